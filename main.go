package main

import (
	"gitlab.com/vendalink-commerce/affiliate_api/cmd"
)

func main() {
	cmd.Execute()
}
