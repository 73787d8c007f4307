package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/born-ml/jitlink/internal/funcify"
	"github.com/born-ml/jitlink/internal/graph"
	"github.com/born-ml/jitlink/internal/graphfile"
	"github.com/born-ml/jitlink/internal/logger"
)

var errInput = errors.New("invalid input")

func newRunCmd(a *app) *cobra.Command {
	var inputs []string
	var vectorize string

	cmd := &cobra.Command{
		Use:   "run <graph.yaml>",
		Short: "Compile a graph file and evaluate it",
		Example: `  jitlink run scaled_sum.yaml --input x=1 --input y=2
  jitlink run fused.yaml -i a=1,2,3 -i b=10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logger.FromContext(ctx, a.log)

			fg, err := graphfile.Load(args[0])
			if err != nil {
				return err
			}

			values, err := parseInputs(inputs)
			if err != nil {
				return err
			}
			callArgs, err := bindInputs(a.disp, fg, values)
			if err != nil {
				return err
			}

			var opts []funcify.FuncifyOption
			if vectorize != "" {
				on, err := strconv.ParseBool(vectorize)
				if err != nil {
					return fmt.Errorf("--vectorize: %w", err)
				}
				opts = append(opts, funcify.WithVectorize(on))
			}

			k, err := a.disp.Funcify(ctx, fg, opts...)
			if err != nil {
				return err
			}
			log.Debug("compiled graph", zap.Stringer("kernel", k))

			outs, err := k.Call(callArgs...)
			if err != nil {
				return err
			}
			for i, out := range outs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", fg.Outputs[i], out)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "input value as name=v or name=v1,v2,...")
	cmd.Flags().StringVar(&vectorize, "vectorize", "", "override the vectorize setting (true/false)")
	return cmd
}

// parseInputs turns name=v1,v2 pairs into Go values. A single value stays a
// scalar; a list becomes []int64 when every item is an integer and
// []float64 otherwise.
func parseInputs(pairs []string) (map[string]any, error) {
	values := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" || raw == "" {
			return nil, fmt.Errorf("%w %q: want name=value", errInput, pair)
		}
		if _, dup := values[name]; dup {
			return nil, fmt.Errorf("%w: %q given twice", errInput, name)
		}
		v, err := parseValue(raw)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", errInput, name, err)
		}
		values[name] = v
	}
	return values, nil
}

func parseValue(raw string) (any, error) {
	items := strings.Split(raw, ",")
	ints := make([]int64, 0, len(items))
	floats := make([]float64, 0, len(items))
	allInt := true
	for _, item := range items {
		item = strings.TrimSpace(item)
		if n, err := strconv.ParseInt(item, 10, 64); err == nil {
			ints = append(ints, n)
			floats = append(floats, float64(n))
			continue
		}
		f, err := strconv.ParseFloat(item, 64)
		if err != nil {
			return nil, err
		}
		allInt = false
		floats = append(floats, f)
	}

	switch {
	case len(items) == 1 && allInt:
		return ints[0], nil
	case len(items) == 1:
		return floats[0], nil
	case allInt:
		return ints, nil
	default:
		return floats, nil
	}
}

// bindInputs orders values by graph input and converts each to its
// declared dtype.
func bindInputs(d *funcify.Dispatcher, fg *graph.FunctionGraph, values map[string]any) ([]any, error) {
	args := make([]any, len(fg.Inputs))
	for i, in := range fg.Inputs {
		v, ok := values[in.Name]
		if !ok {
			return nil, fmt.Errorf("%w: missing value for %q", errInput, in.Name)
		}
		typed, err := d.Typify(v, funcify.WithDType(in.Type.DType))
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", errInput, in.Name, err)
		}
		args[i] = typed
		delete(values, in.Name)
	}
	if len(values) > 0 {
		extra := make([]string, 0, len(values))
		for name := range values {
			extra = append(extra, name)
		}
		sort.Strings(extra)
		return nil, fmt.Errorf("%w: not graph inputs: %s", errInput, strings.Join(extra, ", "))
	}
	return args, nil
}
