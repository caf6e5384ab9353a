package commands

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/splitdepth/pkg/alg/intervaldp"
	"github.com/Sumatoshi-tech/splitdepth/pkg/render"
	"github.com/Sumatoshi-tech/splitdepth/pkg/seqio"
)

const (
	defaultVerifyCount  = 200
	defaultVerifyMaxLen = intervaldp.MaxBruteForceLen
	defaultVerifyValues = 6
	seedStream          = 0x5eed
)

// Verify errors.
var (
	ErrMismatch         = errors.New("evaluators disagree")
	ErrInvalidVerifyArg = errors.New("invalid verify argument")
)

// VerifyCommand holds the flags of the verify command.
type VerifyCommand struct {
	app            *App
	count          int
	maxLen         int
	values         int
	seed           uint64
	mismatchesOnly bool
	dump           string
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(app *App) *cobra.Command {
	vc := &VerifyCommand{app: app}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Cross-check the evaluators on random sequences",
		Long: `Generate random sequences and evaluate each with the memoized, iterative and
brute-force evaluators. Brute force is skipped above 12 elements. Exits with
status 1 when any evaluation disagrees.`,
		Args: cobra.NoArgs,
		RunE: vc.run,
	}

	cmd.Flags().IntVarP(&vc.count, "count", "n", defaultVerifyCount, "Number of random sequences")
	cmd.Flags().IntVar(&vc.maxLen, "max-len", defaultVerifyMaxLen, "Maximal sequence length")
	cmd.Flags().IntVar(&vc.values, "values", defaultVerifyValues, "Values are drawn from [0, values)")
	cmd.Flags().Uint64Var(&vc.seed, "seed", 1, "Random seed")
	cmd.Flags().BoolVar(&vc.mismatchesOnly, "mismatches-only", false, "Only list disagreeing sequences")
	cmd.Flags().StringVar(&vc.dump, "dump", "", "Write the first disagreeing sequence to this file")

	return cmd
}

func (vc *VerifyCommand) run(cmd *cobra.Command, _ []string) error {
	err := vc.validate()
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(vc.seed, seedStream))

	comparisons := make([]intervaldp.Comparison, 0, vc.count)

	var firstMismatch []int64

	for range vc.count {
		seq := randomSequence(rng, rng.IntN(vc.maxLen+1), vc.values)

		cmp, cmpErr := intervaldp.Compare(seq)
		if cmpErr != nil {
			return cmpErr
		}

		if !cmp.Agree() && firstMismatch == nil {
			firstMismatch = seq
		}

		comparisons = append(comparisons, cmp)
	}

	var buf bytes.Buffer

	summary := render.WriteVerify(&buf, comparisons, vc.mismatchesOnly)

	_, err = buf.WriteTo(cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	vc.app.logger.InfoContext(cmd.Context(), "verification finished",
		"checked", summary.Checked,
		"mismatches", summary.Mismatches,
		"brute_force_skipped", summary.BruteSkips,
		"seed", vc.seed,
	)

	if summary.Mismatches == 0 {
		return nil
	}

	if vc.dump != "" {
		dumpErr := dumpSequence(vc.dump, firstMismatch)
		if dumpErr != nil {
			return dumpErr
		}
	}

	return fmt.Errorf("%w: %d of %d sequences (seed %d)", ErrMismatch, summary.Mismatches, summary.Checked, vc.seed)
}

func (vc *VerifyCommand) validate() error {
	switch {
	case vc.count <= 0:
		return fmt.Errorf("%w: --count must be positive", ErrInvalidVerifyArg)
	case vc.maxLen < 0 || vc.maxLen > intervaldp.MaxLen:
		return fmt.Errorf("%w: --max-len must be in [0, %d]", ErrInvalidVerifyArg, intervaldp.MaxLen)
	case vc.values <= 0:
		return fmt.Errorf("%w: --values must be positive", ErrInvalidVerifyArg)
	}

	return nil
}

func randomSequence(rng *rand.Rand, n, values int) []int64 {
	seq := make([]int64, n)
	for idx := range seq {
		seq[idx] = rng.Int64N(int64(values))
	}

	return seq
}

func dumpSequence(path string, seq []int64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dump: %w", err)
	}

	writeErr := seqio.Write(f, seq)
	closeErr := f.Close()

	if writeErr != nil {
		return fmt.Errorf("write dump: %w", writeErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close dump: %w", closeErr)
	}

	return nil
}
