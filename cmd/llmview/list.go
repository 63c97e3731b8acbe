package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/llmview/internal/infra/logx"
	"github.com/John-Robertt/llmview/internal/listing"
)

func newListCommand(c *commandContext) *cobra.Command {
	var (
		asJSON bool
		plain  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "拉取一次目录列表，按排序规则列出 markdown 文件并标出最新",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, err := c.ensureConfig()
			if err != nil {
				return err
			}
			f, err := c.fetcher()
			if err != nil {
				return err
			}
			cmp, err := c.comparator()
			if err != nil {
				return err
			}

			w := listing.Watcher{Fetcher: f, DirURL: eff.DirURL(), Order: cmp}
			res := w.List(cmd.Context())
			if !res.Ok() {
				return fmt.Errorf("拉取目录列表失败（%s）：%v", res.Reason, res.Err)
			}
			latest, _ := listing.Latest(res.Value)

			switch {
			case asJSON:
				return writeListJSON(c.out(), res.Value, latest)
			case plain || !isTerminalWriter(c.out()):
				for _, name := range res.Value {
					fmt.Fprintln(c.out(), name)
				}
				return nil
			}

			if len(res.Value) == 0 {
				fmt.Fprintf(c.out(), "%s 中没有 markdown 文件\n", eff.DirURL())
				return nil
			}
			rows := make([][]string, 0, len(res.Value))
			for i, name := range res.Value {
				mark := ""
				if name == latest {
					mark = "*"
				}
				rows = append(rows, []string{strconv.Itoa(i + 1), name, mark})
			}
			fmt.Fprintln(c.out(), renderTable([]string{"#", "File", "Latest"}, rows, 1))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出")
	cmd.Flags().BoolVar(&plain, "plain", false, "每行一个文件名（非终端时默认）")
	return cmd
}

type listOutput struct {
	Files  []string `json:"files"`
	Latest string   `json:"latest"`
}

func writeListJSON(w io.Writer, files []string, latest string) error {
	if files == nil {
		files = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(listOutput{Files: files, Latest: latest})
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && logx.IsTerminal(f)
}
