package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/agbru/bigadd/internal/ui"
)

// setCustomUsage configures the flag set with a colored usage function.
func setCustomUsage(fs *flag.FlagSet) {
	fs.Usage = func() {
		// NO_COLOR applies before the theme is initialized.
		t := ui.GetCurrentTheme()
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			t = ui.NoColorTheme
		}
		out := fs.Output()

		fmt.Fprintf(out, "\n%sDistributed Big-Integer Adder%s\n", t.Bold, t.Reset)
		fmt.Fprintf(out, "Adds two random N-digit numbers across cooperating ranks and checks every strategy against the sequential sum.\n\n")
		fmt.Fprintf(out, "%sUsage:%s\n  %s [flags] <N1> <N2> [variant]\n  %s -server [flags]\n\n", t.Warning, t.Reset, fs.Name(), fs.Name())

		fmt.Fprintf(out, "%sVariants:%s\n", t.Warning, t.Reset)
		for m := ModeSequential; m <= ModeVerify; m++ {
			fmt.Fprintf(out, "  %s%d%s  %s\n", t.Primary, int(m), t.Reset, modeHelp[m])
		}
		fmt.Fprintf(out, "\n%sFlags:%s\n", t.Warning, t.Reset)

		fs.VisitAll(func(f *flag.Flag) {
			name, usage := flag.UnquoteUsage(f)
			flagSig := fmt.Sprintf("-%s", f.Name)
			if len(name) > 0 {
				flagSig += " " + name
			}
			fmt.Fprintf(out, "  %s%-25s%s %s", t.Primary, flagSig, t.Reset, usage)
			if f.DefValue != "" && f.DefValue != "0" && f.DefValue != "false" {
				fmt.Fprintf(out, " %s(default %s)%s", t.Secondary, f.DefValue, t.Reset)
			}
			fmt.Fprintln(out)
		})
		fmt.Fprintln(out)
	}
}

var modeHelp = [...]string{
	"sequential reference only",
	"standard: blocking point-to-point",
	"scatter: collective scatter and gather",
	"async: non-blocking point-to-point",
	"optimized: local sum first, early carry forwarding",
	"all strategies, then verify (default)",
	"verify the results of a previous run",
}
