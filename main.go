package main

import "github.com/Tiliavir/flex-ledger/cmd"

func main() {
	cmd.Execute()
}
