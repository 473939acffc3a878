package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/milosgajdos/go-ffbs/config"
	"github.com/milosgajdos/go-ffbs/engine"
	"github.com/milosgajdos/go-ffbs/noise"
	"github.com/milosgajdos/go-ffbs/posterior"
	"github.com/milosgajdos/go-ffbs/sim"
	"github.com/milosgajdos/go-ffbs/smooth/bs"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/vg"
)

func doSample(cmd *cobra.Command, args []string) error {
	path, err := cmd.Flags().GetString("model")
	if err != nil {
		return err
	}
	k, err := cmd.Flags().GetInt("draws")
	if err != nil {
		return err
	}
	seed, err := cmd.Flags().GetUint64("seed")
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	plotPath, err := cmd.Flags().GetString("plot")
	if err != nil {
		return err
	}
	every, err := cmd.Flags().GetInt("every")
	if err != nil {
		return err
	}
	if every < 1 {
		every = 1
	}
	if k < 2 {
		return fmt.Errorf("invalid number of draws: %d", k)
	}

	c, err := config.LoadModel(path)
	if err != nil {
		return err
	}
	m, ic, err := c.Build()
	if err != nil {
		return err
	}
	policy, err := c.Policy()
	if err != nil {
		return err
	}
	truth, err := c.TruthBeta()
	if err != nil {
		return err
	}

	var n *noise.Gaussian
	if seed == 0 {
		n, err = noise.NewGaussianTime()
	} else {
		n, err = noise.NewGaussian(seed)
	}
	if err != nil {
		return err
	}

	ec := &engine.Config{
		Stability: policy,
		Logger:    logger(cmd),
	}

	draws, err := posterior.Sample(cmd.Context(), m, ic, n, k, ec)
	if err != nil {
		return fmt.Errorf("failed to sample model: %w", err)
	}

	sum, err := posterior.Summarize(draws)
	if err != nil {
		return err
	}

	if err := render(cmd.OutOrStdout(), draws, sum, truth, every); err != nil {
		return err
	}

	if output != "" {
		if err := writeDraws(output, draws); err != nil {
			return err
		}
	}

	if plotPath != "" {
		var ref mat.Matrix = draws[0].Dynamic()
		if truth != nil {
			ref = truth
		}

		plt, err := sim.NewPathPlot(0, ref, sum.Mean)
		if err != nil {
			return fmt.Errorf("failed to make plot: %w", err)
		}

		if err := plt.Save(10*vg.Inch, 6*vg.Inch, plotPath); err != nil {
			return fmt.Errorf("failed to save plot to %s: %w", plotPath, err)
		}
	}

	return nil
}

// render prints posterior summary table of draws to w
func render(w io.Writer, draws []*bs.Draw, sum *posterior.Summary, truth mat.Matrix, every int) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)

	style := table.StyleLight
	style.Options.SeparateColumns = true
	style.Options.DrawBorder = true
	tw.SetStyle(style)

	header := table.Row{"t", "coef", "mean", "sd", "q05", "q95"}
	if truth != nil {
		header = append(header, "truth")
	}
	tw.AppendHeader(header)

	nb, cols := sum.Mean.Dims()
	for t := 0; t < cols; t += every {
		for j := 0; j < nb; j++ {
			lo, err := posterior.Quantile(draws, j, t, 0.05)
			if err != nil {
				return err
			}
			hi, err := posterior.Quantile(draws, j, t, 0.95)
			if err != nil {
				return err
			}

			row := table.Row{t, fmt.Sprintf("beta[%d]", j), f(sum.Mean.At(j, t)), f(math.Sqrt(sum.Cov[t].At(j, j))), f(lo), f(hi)}
			if truth != nil {
				row = append(row, f(truth.At(j, t)))
			}
			tw.AppendRow(row)
		}
	}

	if draws[0].Partition().HasStatic() {
		tw.AppendSeparator()
		for i := 0; i < sum.Alpha.Len(); i++ {
			tw.AppendRow(table.Row{"-", fmt.Sprintf("alpha[%d]", i), f(sum.Alpha.AtVec(i))})
		}
	}

	tw.Render()
	return nil
}

// writeDraws writes draws to CSV file: one row per draw and time step
func writeDraws(path string, draws []*bs.Draw) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	p := draws[0].Partition()
	header := []string{"draw", "t"}
	for j := 0; j < p.Dynamic; j++ {
		header = append(header, fmt.Sprintf("beta%d", j))
	}
	for i := 0; i < p.Static; i++ {
		header = append(header, fmt.Sprintf("alpha%d", i))
	}

	cw := csv.NewWriter(file)
	if err := cw.Write(header); err != nil {
		return err
	}

	for d, draw := range draws {
		alpha := draw.Static()
		for t := 0; t <= draw.Steps(); t++ {
			beta := draw.Beta(t)
			rec := []string{strconv.Itoa(d), strconv.Itoa(t)}
			for j := 0; j < beta.Len(); j++ {
				rec = append(rec, f(beta.AtVec(j)))
			}
			for i := 0; i < p.Static; i++ {
				rec = append(rec, f(alpha.AtVec(i)))
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	return file.Close()
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
