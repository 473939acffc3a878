package main

import (
	"fmt"

	"github.com/milosgajdos/go-ffbs/config"
	"github.com/milosgajdos/go-ffbs/sim"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
)

func doSimulate(cmd *cobra.Command, args []string) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	seed, err := cmd.Flags().GetUint64("seed")
	if err != nil {
		return err
	}

	s := config.DefaultSimulation()
	if path != "" {
		s, err = config.LoadSimulation(path)
		if err != nil {
			return err
		}
	}
	if seed != 0 {
		s.Seed = seed
	}

	p, err := s.Params()
	if err != nil {
		return err
	}

	d, err := sim.Simulate(p, rand.NewSource(s.Seed))
	if err != nil {
		return fmt.Errorf("failed to simulate model: %w", err)
	}

	c := config.FromModel(d.Model, d.InitCond)
	c.SetTruth(d)

	if err := c.Save(output); err != nil {
		return err
	}

	n, nb, steps := d.Model.Dims()
	cmd.Printf("Simulated %d steps of %d coefficients (%d dynamic) to %s\n", steps, n, nb, output)
	return nil
}
