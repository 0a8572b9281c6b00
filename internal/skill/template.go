package skill

import "fmt"

// Template returns the known-good source for a skill name. The repair path
// overwrites a failing skill's source with this before reloading.
func Template(name string) string {
	switch name {
	case "add":
		return `package skill

// Add returns the sum of two integers.
func Add(a, b int) int {
	return a + b
}
`
	default:
		symbol := symbolFor(name)
		return fmt.Sprintf(`package skill

func %s() int {
	return 0
}
`, symbol[len("skill."):])
	}
}

// BrokenTemplate returns a source unit that loads but fails on invocation.
// Used to seed demos and tests of the repair path.
func BrokenTemplate(name string) string {
	symbol := symbolFor(name)
	return fmt.Sprintf(`package skill

func %s(a, b int) int {
	panic("corrupted skill source")
}
`, symbol[len("skill."):])
}
