package language

import "testing"

func Test_IsBinaryContent(t *testing.T) {
	late := make([]byte, 1024)
	for i := range late {
		late[i] = 'a'
	}
	late[800] = 0x00

	middle := []byte("aaaaaaaaaa\x00aaaaaaaaaa")

	tests := []struct {
		name    string
		content []byte
		want    bool
	}{
		{"text", []byte("def foo():\n    return 1\n"), false},
		{"png header", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, true},
		{"empty", []byte{}, false},
		{"null in middle", middle, true},
		{"null after sniff window", late, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBinaryContent(tt.content); got != tt.want {
				t.Errorf("IsBinaryContent() = %v, want %v", got, tt.want)
			}
		})
	}
}
