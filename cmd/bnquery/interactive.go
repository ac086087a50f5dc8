package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/awmpietro/golang-bayesnet-inference/internal/bayes"
)

type part int

const (
	partMarginal part = iota + 1
	partOrdered
	partEvidence
)

var partUsage = map[part]struct {
	use   string
	short string
}{
	partMarginal: {use: "p1", short: "Prompt for Variable:Outcome and print its marginal probability"},
	partOrdered:  {use: "p2", short: "Prompt for a query and an elimination order"},
	partEvidence: {use: "p3", short: "Prompt for a query and space separated evidence"},
}

func newInteractiveCmd(opts *rootOptions, p part) *cobra.Command {
	usage := partUsage[p]
	return &cobra.Command{
		Use:   usage.use + " <network>",
		Short: usage.short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			q, err := prompt(bufio.NewScanner(cmd.InOrStdin()), cmd.OutOrStdout(), p)
			if err != nil {
				return err
			}
			prob, _, err := s.svc.Query(s.source, q, s.options)
			if err != nil {
				return err
			}
			printProbability(cmd.OutOrStdout(), prob)
			return nil
		},
	}
}

func prompt(in *bufio.Scanner, out io.Writer, p part) (bayes.Query, error) {
	line, err := ask(in, out, "Query:")
	if err != nil {
		return bayes.Query{}, err
	}
	variable, outcome, err := bayes.ParseQuery(line)
	if err != nil {
		return bayes.Query{}, fmt.Errorf("please provide valid query <Variable:Value>: %w", err)
	}
	q := bayes.Query{Variable: variable, Outcome: outcome}

	switch p {
	case partOrdered:
		line, err := ask(in, out, "Order:")
		if err != nil {
			return bayes.Query{}, err
		}
		if q.Order, err = bayes.ParseOrder(line); err != nil {
			return bayes.Query{}, err
		}
	case partEvidence:
		line, err := ask(in, out, "Evidence:")
		if err != nil {
			return bayes.Query{}, err
		}
		if q.Evidence, err = bayes.ParseEvidence(line); err != nil {
			return bayes.Query{}, fmt.Errorf("please provide valid evidence separated by space <Variable1:Value1 Variable2:Value2>: %w", err)
		}
	}
	return q, nil
}

func ask(in *bufio.Scanner, out io.Writer, label string) (string, error) {
	fmt.Fprintln(out, label)
	if !in.Scan() {
		if err := in.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: no input for %s", bayes.ErrMalformedQuery, strings.TrimSuffix(label, ":"))
	}
	return in.Text(), nil
}
