package tool

// Split breaks a command-line fragment into discrete arguments. A double
// quote toggles quoting and is never part of the result; spaces inside quotes
// do not end the current argument, spaces outside quotes do. Empty input
// yields no arguments.
//
// This is deliberately simpler than a shell lexer: backslash escapes and
// single quotes are not interpreted, and an unbalanced quote produces a
// best-effort split rather than an error.
func Split(line string) []string {
	var args []string
	var current []byte
	inQuotes := false

	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == '"':
			inQuotes = !inQuotes
		case c == ' ' && !inQuotes:
			if len(current) > 0 {
				args = append(args, string(current))
				current = current[:0]
			}
		default:
			current = append(current, c)
		}
	}
	if len(current) > 0 {
		args = append(args, string(current))
	}
	return args
}
