// Command leety is a Gemini chat assistant for LeetCode problem pages.
package main

import "github.com/diogo/leety/internal/commands"

func main() {
	commands.Execute()
}
