package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dbsmedya/parcellink/internal/pnu"
)

var normalizeOwnerClass bool

var normalizeCmd = &cobra.Command{
	Use:   "normalize <value>...",
	Short: "Normalize parcel identifiers",
	Long: `Normalize prints the canonical 19-digit form of each value: every
non-digit character is removed and the digits are left-padded with zeros.
Values without digits have no identifier. Values with more than 19 digits
are kept whole and flagged.

With --owner-class the values are treated as two-digit owner classification
codes instead.

Example:
  parcellink normalize 4425012345-1-0001 "44250 12345"
  parcellink normalize --owner-class 1 012`,
	Args: cobra.MinimumNArgs(1),
	Run:  runNormalize,
}

func init() {
	normalizeCmd.Flags().BoolVar(&normalizeOwnerClass, "owner-class", false,
		"Normalize as two-digit owner classification codes")

	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) {
	for _, raw := range args {
		var id string
		if normalizeOwnerClass {
			id = pnu.OwnerClass(raw)
		} else {
			id = pnu.Normalize(raw)
		}

		switch {
		case id == "":
			cmd.Printf("%s\t(no digits)\n", raw)
		case !normalizeOwnerClass && !pnu.IsCanonical(id):
			cmd.Printf("%s\t%s\t(longer than %d digits)\n", raw, id, pnu.Length)
		default:
			cmd.Printf("%s\t%s\n", raw, id)
		}
	}
}
