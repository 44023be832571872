package beep

import "testing"

func TestSamplesPerCue(t *testing.T) {
	for c, tn := range tones {
		s := samples(c)
		one := int(sampleRate * tn.duration)
		want := one*tn.repeat + int(sampleRate*0.05)*(tn.repeat-1)
		if len(s) != want {
			t.Errorf("cue %d: %d samples, want %d", c, len(s), want)
		}
		var peak int16
		for _, v := range s {
			peak = max(peak, v)
		}
		if peak == 0 {
			t.Errorf("cue %d is silent", c)
		}
	}
}

func TestErrorCueHasGap(t *testing.T) {
	s := samples(Error)
	one := int(sampleRate * tones[Error].duration)
	for i := one; i < one+int(sampleRate*0.05); i++ {
		if s[i] != 0 {
			t.Fatalf("sample %d in gap = %d", i, s[i])
		}
	}
}

func TestUnknownCue(t *testing.T) {
	if s := samples(Cue(99)); s != nil {
		t.Errorf("unknown cue rendered %d samples", len(s))
	}
	Disable()
	Play(Start)
}
