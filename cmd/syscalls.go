package main

import (
	"fmt"

	"unik-bench/internal/logging"
	"unik-bench/internal/syscalls"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newSyscallsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "syscalls",
		Short: "List the system calls a program uses",
	}
	cmd.AddCommand(newObjdumpCmd())
	cmd.AddCommand(newStraceCmd())
	return cmd
}

func newObjdumpCmd() *cobra.Command {
	var tableFile string
	var numbers bool

	cmd := &cobra.Command{
		Use:   "objdump <binary> <kernel_version>",
		Short: "Extract syscalls from a binary's disassembly",
		Long:  "Disassemble a binary with objdump, collect the syscall numbers loaded into eax before every syscall instruction and name them with the syscall_64.tbl of the given kernel version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger()
			ctx := cmd.Context()
			binary, version := args[0], args[1]

			text, err := syscalls.Disassemble(ctx, syscalls.ExecRunner{}, binary)
			if err != nil {
				return err
			}
			found := syscalls.ExtractSyscalls(text)

			var table syscalls.Table
			if tableFile != "" {
				table, err = syscalls.LoadTableFile(tableFile)
			} else {
				table, err = syscalls.NewTableFetcher().Fetch(ctx, version)
			}
			if err != nil {
				return err
			}

			logger.WithFields(logrus.Fields{
				"binary":   binary,
				"kernel":   version,
				"syscalls": len(found),
			}).Debug("Extracted syscalls")

			out := cmd.OutOrStdout()
			for _, m := range table.Map(found) {
				if numbers {
					fmt.Fprintf(out, "%d %s\n", m.Number, m.Name)
				} else {
					fmt.Fprintln(out, m.Name)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tableFile, "table-file", "", "Use a local syscall_64.tbl instead of downloading it")
	cmd.Flags().BoolVar(&numbers, "numbers", false, "Print the syscall number before each name")
	return cmd
}

func newStraceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strace -- <command> [args...]",
		Short: "Trace a command and list the syscalls it made",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := syscalls.Trace(cmd.Context(), syscalls.ExecRunner{}, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range syscalls.SummaryLines(report) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}
