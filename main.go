package main

import "github.com/Tiliavir/gitlab-todotxt-sync/cmd"

func main() {
	cmd.Execute()
}
