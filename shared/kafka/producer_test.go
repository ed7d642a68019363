package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"

	"lotcheck/batch"
	"lotcheck/logger"
	"lotcheck/types"
)

func TestProducer_PublishReport(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	defer sp.Close()

	id := uuid.New()
	sp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "lotcheck.batches" {
			return fmt.Errorf("topic = %q", msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != id.String() {
			return fmt.Errorf("key = %q", key)
		}

		raw, _ := msg.Value.Encode()
		var ev map[string]any
		if err := json.Unmarshal(raw, &ev); err != nil {
			return err
		}
		if _, ok := ev["results"]; ok {
			return errors.New("event carries per-link results")
		}
		if ev["total_green_price"] != float64(97) {
			return fmt.Errorf("total_green_price = %v", ev["total_green_price"])
		}
		return nil
	})

	p := newProducer(sp, "lotcheck.batches", logger.NewNop())
	err := p.Publish(context.Background(), &batch.Report{
		ID:              id,
		Total:           2,
		TotalGreenPrice: 97,
		Counts:          map[types.Symbol]int{types.SymbolGreen: 1, types.SymbolRemoved: 1},
		Results:         []types.ClassifiedResult{{Link: "a"}, {Link: "b"}},
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
}

func TestProducer_SendError(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	defer sp.Close()

	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := newProducer(sp, "lotcheck.batches", logger.NewNop())
	err := p.PublishJSON(context.Background(), "k", map[string]int{"n": 1})
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("PublishJSON() error = %v, want ErrOutOfBrokers", err)
	}
}

func TestProducer_CanceledContext(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	defer sp.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newProducer(sp, "lotcheck.batches", logger.NewNop())
	if err := p.PublishJSON(ctx, "k", 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("PublishJSON() error = %v, want context.Canceled", err)
	}
}
