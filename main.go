/*
Copyright © 2025 Logicos Software

sshenv - OpenSSH key and signature tool

This is the main entry point for the sshenv command-line tool.
sshenv reads and writes OpenSSH private keys, public key lines and SSH
signatures, and signs and verifies messages compatibly with
"ssh-keygen -Y sign" and "ssh-keygen -Y verify".
*/
package main

import "sshenv/cmd"

// main delegates all command handling to the cmd package.
func main() {
	cmd.Execute()
}
