package main

import "github.com/dbsmedya/parcellink/cmd/parcellink/cmd"

func main() {
	cmd.Execute()
}
