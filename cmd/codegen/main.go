package main

import (
	"context"
	"fmt"
	"go/format"
	"log"
	"os"
	"time"

	"github.com/delaneyj/copysignals/cmd/codegen/templates"
	"github.com/urfave/cli/v3"
)

const (
	tupleCountKey = "count"
	outKey        = "out"
)

func main() {
	cmd := &cli.Command{
		Name:  "generate",
		Usage: "Generate dependency tuples for UseSelectorWithDependencies",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  tupleCountKey,
				Usage: "Largest tuple arity to generate",
				Value: 6,
			},
			&cli.StringFlag{
				Name:  outKey,
				Usage: "Output file",
				Value: "reactive/dependencies_gen.go",
			},
		},
		Action: generate,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func generate(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	log.Printf("Codegen for dependency tuples started !")
	defer func() {
		log.Printf("Codegen for dependency tuples finished in %v", time.Since(start))
	}()

	count := int(cmd.Uint(tupleCountKey))
	if count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", count)
	}
	out := cmd.String(outKey)
	log.Printf("Tuples: 1..%d -> %s", count, out)

	contents, err := format.Source([]byte(templates.DependenciesGen(count)))
	if err != nil {
		return fmt.Errorf("formatting generated code: %w", err)
	}
	if err := os.WriteFile(out, contents, 0644); err != nil {
		return err
	}
	return nil
}
