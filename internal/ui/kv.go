package ui

import (
	"github.com/ryanuber/columnize"
)

// FormatKV aligns "key|value" rows as "key = value".
func FormatKV(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"
	columnConf.Glue = " = "
	return columnize.Format(in, columnConf)
}

// FormatList aligns "a|b|c" rows into plain columns.
func FormatList(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"
	return columnize.Format(in, columnConf)
}
