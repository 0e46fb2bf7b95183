package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FuzzingLabs/sui-fuzzer/pkg/persistence"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/typedvalue"
)

var replayCmd = &cobra.Command{
	Use:   "replay <crash-file>",
	Args:  cobra.ExactArgs(1),
	Short: "Replay a single persisted crash entry",
	Long: `Replay loads a crash record previously written under crashes_dir,
re-executes the exact inputs against the configured target, and prints the
outcome without driving the fuzzing loop.`,
	RunE: runReplay,
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := persistence.NewCrashStore(cfg.CrashesDir)
	crash, err := store.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load crash entry: %w", err)
	}

	r, closeRunner, err := buildRunner(cfg)
	if err != nil {
		return err
	}
	defer closeRunner()

	r.SetTargetFunction(typedvalue.NewFunction(typedvalue.FunctionDescriptor{Name: crash.TargetFunction}))
	result := r.Execute(crash.Inputs)

	fmt.Printf("target:   %s::%s\n", crash.TargetModule, crash.TargetFunction)
	fmt.Printf("inputs:   %v\n", crash.Inputs)
	if result.Ok() {
		fmt.Println("outcome:  no error reproduced")
		if result.Coverage != nil {
			fmt.Printf("trace:    %d unique PCs\n", result.Coverage.Size())
		}
		return nil
	}

	fmt.Printf("outcome:  %s: %s\n", result.Err.Kind, result.Err.Message)
	return nil
}
