package proc

import (
	"reflect"
	"testing"
)

func TestArgvEqual(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		want bool
	}{
		{"identical", []string{"python3", "bot.py"}, []string{"python3", "bot.py"}, true},
		{"different_arg", []string{"python3", "bot.py"}, []string{"python3", "other.py"}, false},
		{"prefix_only", []string{"python3"}, []string{"python3", "bot.py"}, false},
		{"substring_not_match", []string{"bash", "-c", "python3 bot.py"}, []string{"python3", "bot.py"}, false},
		{"both_empty", nil, nil, true},
		{"one_empty", nil, []string{"python3"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ArgvEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("ArgvEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestParseCmdline(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{"normal", "python3\x00hiddifyTelegramBot.py\x00", []string{"python3", "hiddifyTelegramBot.py"}},
		{"no_trailing_nul", "python3\x00bot.py", []string{"python3", "bot.py"}},
		{"single_arg", "sleep\x00", []string{"sleep"}},
		{"empty", "", nil},
		{"only_nul", "\x00", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCmdline([]byte(tt.data))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseCmdline(%q) = %v, want %v", tt.data, got, tt.want)
			}
		})
	}
}

func TestParsePS(t *testing.T) {
	output := `  101 python3 hiddifyTelegramBot.py
  202 /usr/sbin/sshd -D
bogus line without pid
  303 sleep
`
	got := parsePS([]byte(output))
	want := []Process{
		{PID: 101, Argv: []string{"python3", "hiddifyTelegramBot.py"}},
		{PID: 202, Argv: []string{"/usr/sbin/sshd", "-D"}},
		{PID: 303, Argv: []string{"sleep"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parsePS() = %v, want %v", got, want)
	}
}
