package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/yufurikuto/EduExam/internal/config"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// Prints a bcrypt hash for TEACHER_ACCESS_CODE_HASH. With the variable set,
// teacher login only accepts this code as the password.
func main() {
	cfg := config.Load()

	fmt.Println("=== Create Teacher Access Code ===")

	fmt.Print("Enter Access Code: ")
	code, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // Newline after password input
	if err != nil {
		fmt.Println("Error reading access code")
		os.Exit(1)
	}
	if len(code) < 8 {
		fmt.Println("Error: Access code must be at least 8 characters")
		os.Exit(1)
	}

	fmt.Print("Repeat Access Code: ")
	again, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil || string(again) != string(code) {
		fmt.Println("Error: Access codes do not match")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword(code, cfg.BcryptCost)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nTEACHER_ACCESS_CODE_HASH=%s\n", hash)
}
