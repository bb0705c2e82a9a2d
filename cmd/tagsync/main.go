package main

import (
	"tagsync/cmd/tagsync/cmd"
	"tagsync/lib/util/serviceutil"
)

func main() {
	cmd.Execute(serviceutil.SignalContext())
}
