package security

import "regexp"

// blockedCommands are never permitted regardless of directory confinement:
// privilege elevation, user and group administration, service and power
// control, filesystem mounting, raw disk tools.
var blockedCommands = map[string]struct{}{
	"sudo":      {},
	"su":        {},
	"passwd":    {},
	"useradd":   {},
	"userdel":   {},
	"usermod":   {},
	"groupadd":  {},
	"groupdel":  {},
	"groupmod":  {},
	"visudo":    {},
	"systemctl": {},
	"service":   {},
	"init":      {},
	"shutdown":  {},
	"reboot":    {},
	"halt":      {},
	"poweroff":  {},
	"mount":     {},
	"umount":    {},
	"mkfs":      {},
	"dd":        {},
	"fdisk":     {},
}

// dangerousPatterns match command text that can escape or damage the session
// no matter which directory it nominally targets.
var dangerousPatterns = []*regexp.Regexp{
	// Directory traversal.
	regexp.MustCompile(`\.\./|/\.\.`),
	// Redirection into or out of device files.
	regexp.MustCompile(`>\s*/dev/|<\s*/dev/`),
	// Permission, ownership and disk tooling anywhere in the command line,
	// including behind chaining metacharacters.
	regexp.MustCompile(`(?i)\b(chmod|chown|mount|umount|mkfs|dd|fdisk)\b`),
	// Network listeners and scanners.
	regexp.MustCompile(`(?i)\b(nc|netcat|socat|nmap)\b\s+-[lep]`),
	// Sensitive system files.
	regexp.MustCompile(`/etc/passwd|/etc/shadow|/etc/sudoers`),
	// Kernel and boot trees.
	regexp.MustCompile(`/boot/|/sys/|/proc/sys/`),
}

// pathPatterns extract candidate file-path operands from a command line.
// Only absolute matches are validated; relative operands cannot be resolved
// without a working directory and are left to the remote shell (a documented
// limitation of static command-text analysis).
var pathPatterns = []*regexp.Regexp{
	// Bare absolute paths.
	regexp.MustCompile(`(?:^|\s)(/[^\s;|&<>]+)`),
	// Arguments to common file-reading and listing verbs.
	regexp.MustCompile(`(?:cat|less|more|head|tail|grep|find|ls)\s+([^\s;|&<>]+)`),
	// Redirection targets.
	regexp.MustCompile(`>\s*([^\s;|&<>]+)`),
	regexp.MustCompile(`<\s*([^\s;|&<>]+)`),
	// Destination operand of file manipulation commands.
	regexp.MustCompile(`(?:cp|mv|rm|touch|mkdir)\s+[^\s]*\s+([^\s;|&<>]+)`),
}

// sensitiveWritePrefixes protect system trees from writes that land inside an
// otherwise-allowed root (e.g. a root of "/" would still not permit writing
// under /etc).
var sensitiveWritePrefixes = []string{
	"/etc",
	"/usr",
	"/bin",
	"/sbin",
	"/lib",
	"/proc",
	"/sys",
	"/dev",
}

// sensitiveWriteSegments deny writes into credential directories wherever
// they appear in the path.
var sensitiveWriteSegments = map[string]struct{}{
	".ssh":   {},
	".gnupg": {},
}
