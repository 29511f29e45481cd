package main

import (
	"fmt"
	"os"

	"github.com/ostafen/jrecover/cmd/cmd"
	"github.com/ostafen/jrecover/internal/env"
)

func main() {
	PrintLogo()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func PrintLogo() {
	fmt.Println("   _                                    ")
	fmt.Println("  (_)_ __ ___  ___ _____   _____ _ __  ")
	fmt.Println("  | | '__/ _ \\/ __/ _ \\ \\ / / _ \\ '__|")
	fmt.Println("  | | | |  __/ (_| (_) \\ V /  __/ |   ")
	fmt.Println(" _/ |_|  \\___|\\___\\___/ \\_/ \\___|_|   ")
	fmt.Println("|__/                                   ")
	fmt.Println()
	fmt.Println("JPEG recovery from raw disk images")
	fmt.Println()
	fmt.Printf("Version:   %s\n", env.Version)
	fmt.Printf("Commit:    %s\n", env.CommitHash)
	fmt.Printf("Build Time: %s\n", env.BuildTime)
	fmt.Println(" ")
}
