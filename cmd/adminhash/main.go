// Command adminhash prints an Argon2id hash for MARKET_ADMIN_PASSWORD_HASH.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/futamarket/market-backend/pkg/security"
)

func main() {
	memory := flag.Uint("memory", uint(security.DefaultParams.Memory), "argon2 memory in KiB")
	iterations := flag.Uint("time", uint(security.DefaultParams.Time), "argon2 iterations")
	flag.Parse()

	// read from stdin so the secret stays out of shell history
	password, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && password == "" {
		fmt.Fprintln(os.Stderr, "read password from stdin:", err)
		os.Exit(1)
	}
	password = strings.TrimRight(password, "\r\n")

	params := security.DefaultParams
	params.Memory = uint32(*memory)
	params.Time = uint32(*iterations)

	hash, err := security.HashPassword(password, params)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
