//go:build integration

package test_test

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dictate/clipboard"
)

var testBinary string

const transcript = "integration transcript"

func TestMain(m *testing.M) {
	testBinary = os.Getenv("DICTATE_TEST_BIN")
	if testBinary == "" {
		fmt.Fprintln(os.Stderr, "DICTATE_TEST_BIN not set; build with: go build -o dictate . && DICTATE_TEST_BIN=$PWD/dictate go test -tags integration ./test")
		os.Exit(1)
	}

	if err := os.MkdirAll("data", 0755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	files := map[string]float64{"silence.wav": 0, "tone.wav": 0.3}
	for name, amp := range files {
		if err := generateWAV(filepath.Join("data", name), 16000, 1.0, amp); err != nil {
			fmt.Fprintf(os.Stderr, "failed to generate %s: %v\n", name, err)
			os.Exit(1)
		}
	}
	code := m.Run()
	for name := range files {
		os.Remove(filepath.Join("data", name))
	}
	os.Exit(code)
}

func generateWAV(path string, sampleRate int, durationS, amp float64) error {
	const headerSize = 44
	numSamples := int(float64(sampleRate) * durationS)
	dataSize := numSamples * 2

	buf := make([]byte, headerSize+dataSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(headerSize-8+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(buf[32:34], 2)  // block align
	binary.LittleEndian.PutUint16(buf[34:36], 16) // bits per sample
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	for i := 0; i < numSamples; i++ {
		v := amp * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate))
		binary.LittleEndian.PutUint16(buf[headerSize+i*2:], uint16(int16(v*32767)))
	}
	return os.WriteFile(path, buf, 0644)
}

func cmds(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}

func runDictate(t *testing.T, stdin string, env []string, args ...string) (logDir, stdout string) {
	t.Helper()
	logDir = t.TempDir()
	cmdArgs := append([]string{"-logpath", logDir}, args...)

	cmd := exec.Command(testBinary, cmdArgs...)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Env = append(os.Environ(), env...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("dictate exited with error: %v\noutput: %s", err, out)
	}
	return logDir, string(out)
}

func fake(text string) []string {
	return []string{"DICTATE_FAKE_TRANSCRIPT=" + text}
}

func readLog(t *testing.T, logDir, filename string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(logDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		t.Fatalf("failed to read %s: %v", filename, err)
	}
	return string(data)
}

func TestTranscriptLogged(t *testing.T) {
	logDir, out := runDictate(t, cmds("KEYDOWN", "KEYUP", "WAIT", "QUIT"), fake(transcript), "-test", "data/tone.wav")
	if !strings.Contains(readLog(t, logDir, "transcribe_log.txt"), transcript) {
		t.Error("transcribe_log.txt missing transcript")
	}
	if !strings.Contains(out, "[idle] Pasted: "+transcript) {
		t.Errorf("no pasted status in output:\n%s", out)
	}
}

func TestModelReused(t *testing.T) {
	logDir, _ := runDictate(t, cmds("KEYDOWN", "KEYUP", "WAIT", "KEYDOWN", "KEYUP", "WAIT", "QUIT"),
		fake(transcript), "-test", "data/tone.wav")
	diag := readLog(t, logDir, "diagnostics_log.txt")
	if strings.Count(diag, "inference") < 2 {
		t.Error("expected 2 inference entries in diagnostics")
	}
	if !strings.Contains(diag, "cache=reused") {
		t.Error("expected cache=reused in diagnostics")
	}
}

func TestBoilerplateDropped(t *testing.T) {
	logDir, out := runDictate(t, cmds("KEYDOWN", "KEYUP", "WAIT", "QUIT"),
		fake("Thanks for watching!"), "-test", "data/silence.wav")
	if strings.TrimSpace(readLog(t, logDir, "transcribe_log.txt")) != "" {
		t.Error("boilerplate reached the transcript log")
	}
	if !strings.Contains(out, "No speech detected") {
		t.Errorf("expected no speech status:\n%s", out)
	}
}

func TestEscapeCancels(t *testing.T) {
	logDir, out := runDictate(t, cmds("KEYDOWN", "SLEEP 200", "ESC", "WAIT", "KEYUP", "QUIT"),
		fake(transcript), "-test", "data/tone.wav")
	if strings.TrimSpace(readLog(t, logDir, "transcribe_log.txt")) != "" {
		t.Error("cancelled recording was transcribed")
	}
	if !strings.Contains(out, "Recording cancelled") {
		t.Errorf("no cancel status:\n%s", out)
	}
}

func TestMissingModel(t *testing.T) {
	_, out := runDictate(t, cmds("KEYDOWN", "KEYUP", "WAIT", "QUIT"),
		[]string{"DICTATE_MODEL_DIR=" + t.TempDir()}, "-test", "data/tone.wav")
	if !strings.Contains(out, "Model not downloaded yet") {
		t.Errorf("expected model hint:\n%s", out)
	}
}

func TestClipboardRestore(t *testing.T) {
	board := clipboard.NewSystem()
	sentinel := fmt.Sprintf("dictate-test-sentinel-%d", time.Now().UnixNano())
	if err := board.WriteText(sentinel); err != nil {
		t.Skip("clipboard not available")
	}

	_, _ = runDictate(t, cmds("KEYDOWN", "KEYUP", "WAIT", "SLEEP 400", "QUIT"), fake(transcript), "-test", "data/tone.wav")

	clip, err := clipboard.Read()
	if err != nil {
		t.Skip("clipboard not available")
	}
	if strings.TrimSpace(clip) != sentinel {
		t.Errorf("clipboard not restored: got %q, want %q", strings.TrimSpace(clip), sentinel)
	}
}
