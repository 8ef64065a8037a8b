package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
)

// GoldenData represents a single test case in the golden file.
type GoldenData struct {
	Name string `json:"name"`
	A    string `json:"a"`
	B    string `json:"b"`
	Sum  string `json:"sum"`
}

func main() {
	outputDir := flag.String("out", "internal/addition/testdata", "Output directory for the golden file")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	filename := filepath.Join(*outputDir, "addition_golden.json")
	file, err := os.Create(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	// Operands are written most-significant first and keep their leading
	// zeros, since the operand width decides how many digits are split.
	pairs := []struct{ name, a, b string }{
		{"carry ripples into a new digit", "999", "001"},
		{"unequal lengths", "99999", "01"},
		{"shorter first operand", "1", "99999"},
		{"no carry", "123", "456"},
		{"single digit overflow", "5", "5"},
		{"zero", "0", "0"},
		{"all nines plus one", strings.Repeat("9", 20), strings.Repeat("0", 19) + "1"},
		{"twenty digits", "12345678901234567890", "98765432109876543210"},
		{"carry only at the top", "50000", "50000"},
		{"all nines without carry", "4999", "5000"},
		{"alternating carries", "9090909", "0909091"},
	}

	var data []GoldenData
	fmt.Println("Generating golden data...")
	for _, p := range pairs {
		data = append(data, GoldenData{Name: p.name, A: p.a, B: p.b, Sum: sumBig(p.a, p.b)})
		fmt.Printf("Generated %s\n", p.name)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully generated golden file at %s\n", filename)
}

// sumBig adds two decimal strings with math/big and pads the sum back to the
// wider operand's width, the way the adder reports it.
func sumBig(a, b string) string {
	x, _ := new(big.Int).SetString(a, 10)
	y, _ := new(big.Int).SetString(b, 10)
	s := new(big.Int).Add(x, y).String()
	width := max(len(a), len(b))
	if len(s) < width {
		s = strings.Repeat("0", width-len(s)) + s
	}
	return s
}
