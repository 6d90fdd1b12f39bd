package shell

import (
	"embed"
	"io/fs"
	"strings"
)

//go:embed helptext/*.txt
var helptext embed.FS

func usage() (string, error) {
	dat, err := fs.ReadFile(helptext, "helptext/usage.txt")
	if err != nil {
		return "", err
	}
	return string(dat), nil
}

func usageTopic(topic string) string {
	dat, err := fs.ReadFile(helptext, "helptext/"+topic+".txt")
	if err != nil {
		return "There is no help text for the topic " + topic
	}
	return string(dat)
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		u, err := usage()
		if err != nil {
			return nil, err
		}
		return msg(strings.TrimRight(u, "\n")), nil
	}
	return msg(strings.TrimRight(usageTopic(cmd.args[0]), "\n")), nil
}
