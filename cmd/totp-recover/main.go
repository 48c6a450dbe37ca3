package main

import "github.com/jeremyhahn/go-totp-recover/internal/cli"

func main() {
	cli.Execute()
}
