package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"lotcheck/demo/client"
	"lotcheck/demo/tui"
)

func main() {
	// Load environment
	_ = godotenv.Load()

	defaultURL := os.Getenv("LOTCHECK_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}

	// Parse command-line flags
	serverURL := flag.String("url", defaultURL, "lotcheck server URL")
	file := flag.String("file", "", "file with one link per line (default: remaining arguments)")
	mode := flag.String("mode", "", "lookup mode: default or special")
	flag.Parse()

	links := flag.Args()
	if *file != "" {
		fromFile, err := readLinks(*file)
		if err != nil {
			fmt.Printf("Error reading links: %v\n", err)
			os.Exit(1)
		}
		links = append(links, fromFile...)
	}
	if len(links) == 0 {
		fmt.Println("No links given; pass them as arguments or with -file")
		os.Exit(2)
	}

	m := tui.NewModel(client.NewClient(*serverURL), links, *mode)

	// Ctrl+C reaches the model as a key press in raw mode
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}

// readLinks returns the non-blank lines of path
func readLinks(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var links []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" && !strings.HasPrefix(line, "#") {
			links = append(links, line)
		}
	}
	return links, sc.Err()
}
