package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/zendalabs/zenda/internal/currency"
	"github.com/zendalabs/zenda/internal/scorecard"
	"github.com/zendalabs/zenda/pkg/types"
)

const defaultAddr = "http://localhost:8080"

func main() {
	exitFn(run(os.Args, os.Stdout, os.Stderr))
}

var exitFn = os.Exit

func run(args []string, stdout io.Writer, stderr io.Writer) int {
	if len(args) < 2 {
		usage(stderr)
		return 2
	}

	switch args[1] {
	case "score":
		return handleScore(args[2:], stdout, stderr)
	case "decision":
		return handleDecision(args[2:], stdout, stderr)
	case "pack":
		return handlePack(args[2:], stdout, stderr)
	case "samples":
		return handleSamples(args[2:], stdout, stderr)
	case "scorecard":
		return handleScorecard(args[2:], stdout, stderr)
	default:
		usage(stderr)
		return 2
	}
}

func handleScore(args []string, stdout io.Writer, stderr io.Writer) int {
	fs := flag.NewFlagSet("score", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", envOrDefault("ZENDA_ADDR", defaultAddr), "Zenda API address")
	token := fs.String("token", os.Getenv("ZENDA_TOKEN"), "bearer token")
	file := fs.String("file", "", "applicant JSON file, - for stdin")
	jsonOut := fs.Bool("json", false, "print raw JSON response")
	if err := fs.Parse(args); err != nil {
		fs.Usage()
		return 2
	}

	if *file == "" {
		fmt.Fprintln(stderr, "score requires --file <applicant.json>")
		fs.Usage()
		return 2
	}

	var body []byte
	var err error
	if *file == "-" {
		body, err = io.ReadAll(os.Stdin)
	} else {
		// #nosec G304 -- path comes from the operator's command line.
		body, err = os.ReadFile(*file)
	}
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}

	respBody, status, err := httpPost(http.DefaultClient, *addr+"/v1/score", *token, body)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	if status != http.StatusOK {
		fmt.Fprintf(stderr, "score failed: %s\n", strings.TrimSpace(string(respBody)))
		return 1
	}

	if *jsonOut {
		_, _ = stdout.Write(respBody)
		return 0
	}
	return printDecision(respBody, stdout, stderr)
}

func handleDecision(args []string, stdout io.Writer, stderr io.Writer) int {
	fs := flag.NewFlagSet("decision", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", envOrDefault("ZENDA_ADDR", defaultAddr), "Zenda API address")
	token := fs.String("token", os.Getenv("ZENDA_TOKEN"), "bearer token")
	jsonOut := fs.Bool("json", false, "print raw JSON response")
	if err := fs.Parse(args); err != nil {
		fs.Usage()
		return 2
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "decision requires <decision_id>")
		fs.Usage()
		return 2
	}
	decisionID := fs.Arg(0)

	respBody, status, err := httpGet(http.DefaultClient, *addr+"/v1/decisions/"+decisionID, *token)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	if status != http.StatusOK {
		fmt.Fprintf(stderr, "decision failed: %s\n", strings.TrimSpace(string(respBody)))
		return 1
	}

	if *jsonOut {
		_, _ = stdout.Write(respBody)
		return 0
	}
	return printDecision(respBody, stdout, stderr)
}

func handlePack(args []string, stdout io.Writer, stderr io.Writer) int {
	fs := flag.NewFlagSet("pack", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", envOrDefault("ZENDA_ADDR", defaultAddr), "Zenda API address")
	token := fs.String("token", os.Getenv("ZENDA_TOKEN"), "bearer token")
	outPath := fs.String("out", "zenda-pack.zip", "output zip path")
	if err := fs.Parse(args); err != nil {
		fs.Usage()
		return 2
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "pack requires <decision_id>")
		fs.Usage()
		return 2
	}
	decisionID := fs.Arg(0)

	respBody, status, err := httpGet(http.DefaultClient, *addr+"/v1/decisions/"+decisionID+"/pack", *token)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	if status != http.StatusOK {
		fmt.Fprintf(stderr, "pack failed: %s\n", strings.TrimSpace(string(respBody)))
		return 1
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o750); err != nil && filepath.Dir(*outPath) != "." {
		fmt.Fprintln(stderr, "output dir:", err)
		return 1
	}
	if err := os.WriteFile(*outPath, respBody, 0o600); err != nil {
		fmt.Fprintln(stderr, "write output:", err)
		return 1
	}
	fmt.Fprintf(stdout, "wrote %s\n", *outPath)
	return 0
}

func handleSamples(args []string, stdout io.Writer, stderr io.Writer) int {
	fs := flag.NewFlagSet("samples", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", envOrDefault("ZENDA_ADDR", defaultAddr), "Zenda API address")
	token := fs.String("token", os.Getenv("ZENDA_TOKEN"), "bearer token")
	jsonOut := fs.Bool("json", false, "print raw JSON response")
	if err := fs.Parse(args); err != nil {
		fs.Usage()
		return 2
	}

	respBody, status, err := httpGet(http.DefaultClient, *addr+"/v1/applicants/samples", *token)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	if status != http.StatusOK {
		fmt.Fprintf(stderr, "samples failed: %s\n", strings.TrimSpace(string(respBody)))
		return 1
	}

	if *jsonOut {
		_, _ = stdout.Write(respBody)
		return 0
	}

	var payload struct {
		Applicants []types.Applicant `json:"applicants"`
	}
	if err := json.Unmarshal(respBody, &payload); err != nil {
		fmt.Fprintln(stderr, "invalid response:", err)
		return 1
	}
	for _, a := range payload.Applicants {
		fmt.Fprintf(stdout, "%-12s %-4s income=%s anomalies=%d age=%dmo\n",
			a.Country, a.Currency, currency.Format(a.AvgIncome, a.Currency), a.AnomalousTransactions, a.AccountAgeMonths)
	}
	return 0
}

func handleScorecard(args []string, stdout io.Writer, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	switch args[0] {
	case "lint":
		fs := flag.NewFlagSet("scorecard lint", flag.ContinueOnError)
		fs.SetOutput(stderr)
		if err := fs.Parse(args[1:]); err != nil {
			fs.Usage()
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(stderr, "scorecard lint requires <scorecard_path>")
			fs.Usage()
			return 2
		}
		path := fs.Arg(0)
		loaded, err := scorecard.Load(path)
		if err != nil {
			fmt.Fprintln(stderr, err.Error())
			return 1
		}
		fmt.Fprintf(stdout, "ok scorecard_id=%s scorecard_hash=%s\n", loaded.Scorecard.ScorecardID, loaded.Hash)
		return 0
	default:
		usage(stderr)
		return 2
	}
}

func printDecision(respBody []byte, stdout io.Writer, stderr io.Writer) int {
	var payload struct {
		DecisionID string         `json:"decision_id"`
		Decision   types.Decision `json:"decision"`
		Cached     bool           `json:"cached"`
	}
	if err := json.Unmarshal(respBody, &payload); err != nil {
		fmt.Fprintln(stderr, "invalid response:", err)
		return 1
	}

	fmt.Fprintf(stdout, "decision_id=%s\n", payload.DecisionID)
	fmt.Fprintf(stdout, "recommendation=%s score=%d credit_limit=%d confidence=%.1f cached=%t\n",
		payload.Decision.Recommendation, payload.Decision.Score, payload.Decision.CreditLimit,
		payload.Decision.Confidence, payload.Cached)
	for _, f := range payload.Decision.Factors {
		sign := "-"
		if f.Positive {
			sign = "+"
		}
		fmt.Fprintf(stdout, "  [%s] %-24s %+.0f\n", sign, f.Name, f.Impact)
	}
	return 0
}

func httpGet(client *http.Client, url string, token string) ([]byte, int, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func httpPost(client *http.Client, url string, token string, payload []byte) ([]byte, int, error) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func envOrDefault(key string, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func usage(w io.Writer) {
	fmt.Fprint(w, `Zenda CLI

Usage:
  zenda score --file applicant.json [--addr URL] [--json] [--token TOKEN]
  zenda decision <decision_id> [--addr URL] [--json] [--token TOKEN]
  zenda pack <decision_id> --out zenda-pack.zip [--addr URL] [--token TOKEN]
  zenda samples [--addr URL] [--json] [--token TOKEN]
  zenda scorecard lint <scorecard_path>
`)
}
