package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var listFunctionsCmd = &cobra.Command{
	Use:   "list-functions",
	Args:  cobra.NoArgs,
	Short: "List the target's fuzzable functions",
	Long: `list-functions enumerates the functions exposed by the configured
contract whose name carries the fuzz_functions_prefix, the candidates a
stateful --functions run can stress.`,
	RunE: runListFunctions,
}

func runListFunctions(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	vm := newDemoVM(cfg)
	names := fuzzHelperNames(vm, cfg.FuzzFunctionsPrefix)
	sort.Strings(names)

	if len(names) == 0 {
		fmt.Println("no functions found matching prefix:", cfg.FuzzFunctionsPrefix)
		return nil
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}
