package security

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "kasmbridge/internal/errors"
)

func newTestValidator(roots ...string) *Validator {
	if len(roots) == 0 {
		roots = []string{"/home/kasm-user"}
	}
	return NewValidator(NewRootSet(roots))
}

func requireViolation(t *testing.T, err error, kind ViolationKind) *Violation {
	t.Helper()
	require.Error(t, err)

	var violation *Violation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, kind, violation.Kind)
	return violation
}

func TestValidateCommandBlockedCommands(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		command string
		blocked string
	}{
		{"sudo", "sudo rm -rf /", "sudo"},
		{"su", "su - root", "su"},
		{"absolute path to blocked command", "/usr/bin/sudo ls", "sudo"},
		{"systemctl", "systemctl stop ssh", "systemctl"},
		{"shutdown", "shutdown -h now", "shutdown"},
		{"useradd", "useradd mallory", "useradd"},
		{"mount", "mount /dev/sdb1 /mnt", "mount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violation := requireViolation(t, v.ValidateCommand(tt.command, ""), BlockedCommand)
			assert.Equal(t, tt.blocked, violation.Detail)
		})
	}
}

func TestValidateCommandDangerousPatterns(t *testing.T) {
	v := newTestValidator()

	commands := []string{
		"cat ../../etc/hostname",
		"cat /etc/shadow",
		"chmod 777 /etc/passwd",
		"echo x > /dev/sda",
		"cat < /dev/mem",
		"nc -l 4444",
		"grep root /etc/sudoers",
		"ls /proc/sys/kernel",
		"cat /boot/grub/grub.cfg",
	}

	for _, command := range commands {
		t.Run(command, func(t *testing.T) {
			requireViolation(t, v.ValidateCommand(command, ""), DangerousPattern)
		})
	}
}

func TestValidateCommandAllowsSafeCommands(t *testing.T) {
	v := newTestValidator()

	commands := []string{
		"ls -la /home/kasm-user",
		"echo 'Hello World'",
		"python3 /home/kasm-user/script.py",
		"cat /home/kasm-user/notes.txt",
		"git status",
		"",
	}

	for _, command := range commands {
		t.Run(command, func(t *testing.T) {
			assert.NoError(t, v.ValidateCommand(command, ""))
		})
	}
}

func TestValidateCommandWorkingDir(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.ValidateCommand("ls", "/home/kasm-user/project"))

	violation := requireViolation(t, v.ValidateCommand("ls", "/tmp"), PathOutsideRoots)
	assert.Equal(t, "/tmp", violation.Detail)
}

func TestValidateCommandExtractedPaths(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		command string
		allowed bool
	}{
		{"bare absolute path inside root", "wc -l /home/kasm-user/data.csv", true},
		{"bare absolute path outside roots", "wc -l /var/log/syslog", false},
		{"read verb outside roots", "head /etc/hostname", false},
		{"redirection target outside roots", "echo hi > /tmp/out.txt", false},
		{"redirection target inside root", "echo hi > /home/kasm-user/out.txt", true},
		{"copy destination outside roots", "cp notes.txt /opt/notes.txt", false},
		{"flags are not paths", "ls -la", true},
		{"relative operands are not validated", "cat notes.txt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCommand(tt.command, "")
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				requireViolation(t, err, PathOutsideRoots)
			}
		})
	}
}

func TestValidateFileOperation(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name string
		path string
		op   Operation
		kind ViolationKind
		deny bool
	}{
		{"read inside root", "/home/kasm-user/notes.txt", OpRead, 0, false},
		{"write inside root", "/home/kasm-user/notes.txt", OpWrite, 0, false},
		{"read outside roots", "/root/.bashrc", OpRead, PathOutsideRoots, true},
		{"write outside roots", "/var/www/index.html", OpWrite, PathOutsideRoots, true},
		{"access inside root", "/home/kasm-user/bin/tool", OpAccess, 0, false},
		{"write to ssh dir inside root", "/home/kasm-user/.ssh/authorized_keys", OpWrite, SensitiveWriteTarget, true},
		{"write to gnupg dir inside root", "/home/kasm-user/.gnupg/pubring.kbx", OpWrite, SensitiveWriteTarget, true},
		{"read from ssh dir inside root", "/home/kasm-user/.ssh/known_hosts", OpRead, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateFileOperation(tt.path, tt.op)
			if tt.deny {
				requireViolation(t, err, tt.kind)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFileOperationSensitivePrefixesWithBroadRoot(t *testing.T) {
	// Even a root of "/" must not permit writes into protected system trees.
	v := newTestValidator("/")

	for _, path := range []string{
		"/etc/cron.d/job",
		"/usr/local/bin/tool",
		"/bin/sh",
		"/sbin/ifconfig",
		"/lib/x.so",
		"/proc/1/mem",
		"/sys/class/net",
		"/dev/sda",
	} {
		requireViolation(t, v.ValidateFileOperation(path, OpWrite), SensitiveWriteTarget)
	}

	// Reads in those trees are governed by containment only.
	assert.NoError(t, v.ValidateFileOperation("/usr/share/doc/readme", OpRead))
}

func TestSafePath(t *testing.T) {
	v := newTestValidator()

	got, err := v.SafePath("notes.txt", "/home/kasm-user")
	require.NoError(t, err)
	assert.Equal(t, "/home/kasm-user/notes.txt", got)

	got, err = v.SafePath("/home/kasm-user/sub/../notes.txt", "")
	require.NoError(t, err)
	assert.Equal(t, "/home/kasm-user/notes.txt", got)

	_, err = v.SafePath("../../etc/passwd", "/home/kasm-user")
	requireViolation(t, err, PathOutsideRoots)

	_, err = v.SafePath("/etc/passwd", "/home/kasm-user")
	requireViolation(t, err, PathOutsideRoots)
}

func TestViolationUnwrapsToSecurityCode(t *testing.T) {
	v := newTestValidator()

	err := v.ValidateCommand("sudo id", "")
	assert.True(t, errors.Is(err, apperrors.ErrSecurityViolation))
}

func TestViolationMessages(t *testing.T) {
	assert.Equal(t, "command 'sudo' is not allowed",
		(&Violation{Kind: BlockedCommand, Detail: "sudo"}).Error())
	assert.Equal(t, "path '/tmp' is outside allowed roots",
		(&Violation{Kind: PathOutsideRoots, Detail: "/tmp"}).Error())
	assert.Contains(t,
		(&Violation{Kind: SensitiveWriteTarget, Detail: "/etc/passwd"}).Error(),
		"sensitive")
}
