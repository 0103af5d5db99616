package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mchmarny/cardiorisk/pkg/assess"
	"github.com/mchmarny/cardiorisk/pkg/input"
	urfave "github.com/urfave/cli/v3"
)

var (
	errInvalidInput = errors.New("invalid input")

	fieldUsage = map[string]string{
		input.FieldAge:         "Age in years [1-120]",
		input.FieldGender:      "Gender [0, 1]",
		input.FieldHeight:      "Height in cm [100-220]",
		input.FieldWeight:      "Weight in kg [30-200]",
		input.FieldAPHi:        "Systolic blood pressure in mmHg [90-250]",
		input.FieldAPLo:        "Diastolic blood pressure in mmHg [40-150]",
		input.FieldCholesterol: "Cholesterol: 1 (Normal), 2 (Above Normal), 3 (High)",
		input.FieldGluc:        "Glucose: 1 (Normal), 2 (Above Normal), 3 (High)",
		input.FieldSmoke:       "Smoker [0, 1]",
		input.FieldAlco:        "Alcohol intake [0, 1]",
		input.FieldActive:      "Physically active [0, 1]",
	}

	predictCmd = &urfave.Command{
		Name:    "predict",
		Aliases: []string{"p"},
		Usage:   "Score and explain one set of measurements",
		UsageText: `cardiorisk predict --age 55 --gender 1 --height 170 --weight 82 --ap-hi 140 --ap-lo 90 \
     --cholesterol 3 --gluc 1 --smoke 0 --alco 0 --active 1`,
		Action: cmdPredict,
		Flags:  append(inputFlags(), modelFlags()...),
	}
)

// fieldFlagName maps a field name to its flag name.
func fieldFlagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}

// inputFlags are string flags so the raw values reach the validator as typed.
func inputFlags() []urfave.Flag {
	flags := make([]urfave.Flag, 0, len(input.Fields))
	for _, f := range input.Fields {
		flags = append(flags, &urfave.StringFlag{
			Name:  fieldFlagName(f),
			Usage: fieldUsage[f],
		})
	}
	return flags
}

func rawInputFromFlags(cmd *urfave.Command) input.RawInput {
	raw := make(input.RawInput, len(input.Fields))
	for _, f := range input.Fields {
		if name := fieldFlagName(f); cmd.IsSet(name) {
			raw[f] = cmd.String(name)
		}
	}
	return raw
}

func cmdPredict(ctx context.Context, cmd *urfave.Command) error {
	m, err := loadModel(cmd)
	if err != nil {
		return err
	}

	a, err := assess.Assess(ctx, m, rawInputFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("error assessing input: %w", err)
	}

	if err := output(cmd, a); err != nil {
		return err
	}

	if !a.Valid() {
		return fmt.Errorf("%w: %s", errInvalidInput, strings.Join(a.Errors, " "))
	}
	return nil
}
