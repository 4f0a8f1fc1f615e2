package cmd

import (
	"fmt"
	"io"
)

// 构建时通过 -ldflags "-X syl-optimizer/cmd.Version=..." 注入。
var Version = "dev"

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "syl-optimizer %s\n", Version)
}
