// SPDX-License-Identifier: EPL-2.0

package soundbank

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ik5/xactbank/audio"
	"github.com/ik5/xactbank/formats/wavebank"
	"github.com/ik5/xactbank/internal/banktest"
)

// testBank decodes a three-entry PCM wave bank named "Waves" and returns
// it together with a registry holding it.
func testBank(t *testing.T) (*audio.Registry, *audio.WaveBank) {
	t.Helper()

	entries := make([]banktest.WaveEntry, 3)
	for i := range entries {
		entries[i] = banktest.WaveEntry{
			Format:  banktest.PackFormat(44, 0, 1, 22050, 0),
			Payload: bytes.Repeat([]byte{byte(i + 1)}, 4),
		}
	}

	data := banktest.BuildWaveBank(banktest.WaveBankSpec{
		Version: 44,
		Name:    "Waves",
		Entries: entries,
	})

	bank, err := wavebank.Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding wave bank fixture: %v", err)
	}

	reg := audio.NewRegistry()
	reg.Register(bank)

	return reg, bank
}

func openBytes(data []byte) audio.OpenFunc {
	return func(string) (io.ReadSeeker, error) {
		return bytes.NewReader(data), nil
	}
}

func TestGetCue_SimpleCue(t *testing.T) {
	t.Parallel()

	reg, bank := testBank(t)

	data := banktest.BuildSoundBank(banktest.SoundBankSpec{
		WaveBanks: []string{"Waves"},
		CueNames:  []string{"Explosion"},
		Simple:    []int{0},
		Sounds:    []banktest.SoundSpec{{TrackIndex: 2, WaveBankIndex: 0}},
	})

	sb := New("sounds.xsb", openBytes(data), reg)

	cue, err := sb.GetCue("Explosion")
	if err != nil {
		t.Fatalf("GetCue() error = %v", err)
	}

	if cue.Name() != "Explosion" {
		t.Errorf("Name() = %q, want %q", cue.Name(), "Explosion")
	}

	wave, err := cue.Wave()
	if err != nil {
		t.Fatalf("Wave() error = %v", err)
	}
	if wave != bank.Entries[2] {
		t.Error("Wave() did not resolve to wave-bank entry 2")
	}

	if _, ok := cue.(*Simple); !ok {
		t.Errorf("cue type = %T, want *Simple", cue)
	}
}

func TestGetCue_LazyLoad(t *testing.T) {
	t.Parallel()

	reg, _ := testBank(t)

	data := banktest.BuildSoundBank(banktest.SoundBankSpec{
		WaveBanks: []string{"Waves"},
		CueNames:  []string{"A"},
		Simple:    []int{0},
		Sounds:    []banktest.SoundSpec{{TrackIndex: 0, WaveBankIndex: 0}},
	})

	var opens atomic.Int32
	open := func(string) (io.ReadSeeker, error) {
		opens.Add(1)
		return bytes.NewReader(data), nil
	}

	sb := New("sounds.xsb", open, reg)

	if got := opens.Load(); got != 0 {
		t.Fatalf("opens before first GetCue = %d, want 0", got)
	}

	if _, err := sb.GetCue("A"); err != nil {
		t.Fatalf("GetCue() error = %v", err)
	}
	if _, err := sb.GetCue("A"); err != nil {
		t.Fatalf("second GetCue() error = %v", err)
	}

	if got := opens.Load(); got != 1 {
		t.Errorf("opens = %d, want 1 (loaded exactly once)", got)
	}
}

func TestGetCue_ConcurrentFirstAccess(t *testing.T) {
	t.Parallel()

	reg, _ := testBank(t)

	data := banktest.BuildSoundBank(banktest.SoundBankSpec{
		WaveBanks: []string{"Waves"},
		CueNames:  []string{"A", "B"},
		Simple:    []int{0, 0},
		Sounds:    []banktest.SoundSpec{{TrackIndex: 1, WaveBankIndex: 0}},
	})

	var opens atomic.Int32
	open := func(string) (io.ReadSeeker, error) {
		opens.Add(1)
		return bytes.NewReader(data), nil
	}

	sb := New("sounds.xsb", open, reg)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := sb.GetCue("A"); err != nil {
				t.Errorf("GetCue() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := opens.Load(); got != 1 {
		t.Errorf("opens = %d, want exactly 1 decode pass", got)
	}
}

func TestGetCue_CueNotFound(t *testing.T) {
	t.Parallel()

	reg, _ := testBank(t)

	data := banktest.BuildSoundBank(banktest.SoundBankSpec{
		WaveBanks: []string{"Waves"},
		CueNames:  []string{"A"},
		Simple:    []int{0},
		Sounds:    []banktest.SoundSpec{{TrackIndex: 0, WaveBankIndex: 0}},
	})

	sb := New("sounds.xsb", openBytes(data), reg)

	if _, err := sb.GetCue("missing"); !errors.Is(err, ErrCueNotFound) {
		t.Errorf("GetCue() error = %v, want ErrCueNotFound", err)
	}
}

func TestGetCue_UnknownWaveBank(t *testing.T) {
	t.Parallel()

	data := banktest.BuildSoundBank(banktest.SoundBankSpec{
		WaveBanks: []string{"NotRegistered"},
		CueNames:  []string{"A"},
		Simple:    []int{0},
		Sounds:    []banktest.SoundSpec{{TrackIndex: 0, WaveBankIndex: 0}},
	})

	sb := New("sounds.xsb", openBytes(data), audio.NewRegistry())

	if _, err := sb.GetCue("A"); !errors.Is(err, ErrUnknownWaveBank) {
		t.Errorf("GetCue() error = %v, want ErrUnknownWaveBank", err)
	}
}

func TestGetCue_BadMagic(t *testing.T) {
	t.Parallel()

	reg, _ := testBank(t)

	sb := New("sounds.xsb", openBytes([]byte("NOPEnope")), reg)

	if _, err := sb.GetCue("A"); !errors.Is(err, ErrBadFormat) {
		t.Errorf("GetCue() error = %v, want ErrBadFormat", err)
	}
}

func TestGetCue_ComplexCueWaveTable(t *testing.T) {
	t.Parallel()

	reg, bank := testBank(t)

	data := banktest.BuildSoundBank(banktest.SoundBankSpec{
		WaveBanks: []string{"Waves"},
		CueNames:  []string{"Steps"},
		Complex: []banktest.ComplexCueSpec{{
			TableType: banktest.TableWave,
			Entries: []banktest.VariationEntry{
				{TrackIndex: 1, WaveBankIndex: 0, WeightMin: 10, WeightMax: 200},
				{TrackIndex: 2, WaveBankIndex: 0, WeightMin: 20, WeightMax: 100},
			},
		}},
	})

	sb := New("sounds.xsb", openBytes(data), reg)

	cue, err := sb.GetCue("Steps")
	if err != nil {
		t.Fatalf("GetCue() error = %v", err)
	}

	complexCue, ok := cue.(*Complex)
	if !ok {
		t.Fatalf("cue type = %T, want *Complex", cue)
	}

	if len(complexCue.Sounds()) != 2 {
		t.Fatalf("len(Sounds()) = %d, want 2", len(complexCue.Sounds()))
	}

	// The format's weight bytes are consumed but never kept.
	for i, w := range complexCue.Weights() {
		if w != 0 {
			t.Errorf("Weights()[%d] = %v, want 0", i, w)
		}
	}

	wave, err := cue.Wave()
	if err != nil {
		t.Fatalf("Wave() error = %v", err)
	}
	if wave != bank.Entries[1] {
		t.Error("Wave() did not resolve the first table entry (track 1)")
	}
}

func TestGetCue_ComplexCueCompactWaveTable(t *testing.T) {
	t.Parallel()

	reg, bank := testBank(t)

	data := banktest.BuildSoundBank(banktest.SoundBankSpec{
		WaveBanks: []string{"Waves"},
		CueNames:  []string{"Shots"},
		Complex: []banktest.ComplexCueSpec{{
			TableType: banktest.TableCompactWave,
			Entries: []banktest.VariationEntry{
				{TrackIndex: 0, WaveBankIndex: 0},
				{TrackIndex: 2, WaveBankIndex: 0},
			},
		}},
	})

	sb := New("sounds.xsb", openBytes(data), reg)

	cue, err := sb.GetCue("Shots")
	if err != nil {
		t.Fatalf("GetCue() error = %v", err)
	}

	wave, err := cue.Wave()
	if err != nil {
		t.Fatalf("Wave() error = %v", err)
	}
	if wave != bank.Entries[0] {
		t.Error("Wave() did not resolve the first table entry (track 0)")
	}
}

func TestGetCue_ComplexCueSoundTable(t *testing.T) {
	t.Parallel()

	reg, bank := testBank(t)

	data := banktest.BuildSoundBank(banktest.SoundBankSpec{
		WaveBanks: []string{"Waves"},
		CueNames:  []string{"Voices"},
		Sounds:    []banktest.SoundSpec{{TrackIndex: 1, WaveBankIndex: 0}},
		Complex: []banktest.ComplexCueSpec{{
			TableType: banktest.TableSound,
			Entries: []banktest.VariationEntry{
				{SoundIndex: 0, WeightMin: 1, WeightMax: 2},
			},
		}},
	})

	sb := New("sounds.xsb", openBytes(data), reg)

	cue, err := sb.GetCue("Voices")
	if err != nil {
		t.Fatalf("GetCue() error = %v", err)
	}

	wave, err := cue.Wave()
	if err != nil {
		t.Fatalf("Wave() error = %v", err)
	}
	if wave != bank.Entries[1] {
		t.Error("Wave() did not resolve through the nested sound record")
	}
}

func TestGetCue_ComplexTableSoundCue(t *testing.T) {
	t.Parallel()

	reg, bank := testBank(t)

	// Flags bit 2 in the complex cue table marks a plain sound
	// reference despite living in the complex table.
	data := banktest.BuildSoundBank(banktest.SoundBankSpec{
		WaveBanks: []string{"Waves"},
		CueNames:  []string{"Door"},
		Sounds:    []banktest.SoundSpec{{TrackIndex: 2, WaveBankIndex: 0}},
		Complex: []banktest.ComplexCueSpec{{
			SoundCue:   true,
			SoundIndex: 0,
		}},
	})

	sb := New("sounds.xsb", openBytes(data), reg)

	cue, err := sb.GetCue("Door")
	if err != nil {
		t.Fatalf("GetCue() error = %v", err)
	}

	if _, ok := cue.(*Simple); !ok {
		t.Errorf("cue type = %T, want *Simple", cue)
	}

	wave, err := cue.Wave()
	if err != nil {
		t.Fatalf("Wave() error = %v", err)
	}
	if wave != bank.Entries[2] {
		t.Error("Wave() did not resolve to wave-bank entry 2")
	}
}

func TestGetCue_MultipleComplexCues(t *testing.T) {
	t.Parallel()

	reg, bank := testBank(t)

	// Every variation-table cue record trails an instance-limit block in
	// the cue stream, so later records only parse if earlier ones consume
	// it. Mix both record forms and resolve each cue.
	data := banktest.BuildSoundBank(banktest.SoundBankSpec{
		WaveBanks: []string{"Waves"},
		CueNames:  []string{"One", "Two", "Three"},
		Sounds:    []banktest.SoundSpec{{TrackIndex: 0, WaveBankIndex: 0}},
		Complex: []banktest.ComplexCueSpec{
			{
				TableType: banktest.TableWave,
				Entries: []banktest.VariationEntry{
					{TrackIndex: 1, WaveBankIndex: 0, WeightMin: 1, WeightMax: 5},
				},
			},
			{
				TableType: banktest.TableWave,
				Entries: []banktest.VariationEntry{
					{TrackIndex: 2, WaveBankIndex: 0, WeightMin: 1, WeightMax: 5},
				},
			},
			{
				SoundCue:   true,
				SoundIndex: 0,
			},
		},
	})

	sb := New("sounds.xsb", openBytes(data), reg)

	wantTracks := map[string]int{"One": 1, "Two": 2, "Three": 0}
	for name, track := range wantTracks {
		cue, err := sb.GetCue(name)
		if err != nil {
			t.Fatalf("GetCue(%q) error = %v", name, err)
		}

		wave, err := cue.Wave()
		if err != nil {
			t.Fatalf("Wave() for %q error = %v", name, err)
		}
		if wave != bank.Entries[track] {
			t.Errorf("cue %q did not resolve to wave-bank entry %d", name, track)
		}
	}
}

func TestGetCue_UnsupportedVariationType(t *testing.T) {
	t.Parallel()

	reg, _ := testBank(t)

	data := banktest.BuildSoundBank(banktest.SoundBankSpec{
		WaveBanks: []string{"Waves"},
		CueNames:  []string{"Weird"},
		Complex: []banktest.ComplexCueSpec{{
			TableType: 2, // interactive tables are not decoded
			Entries:   []banktest.VariationEntry{{}},
		}},
	})

	sb := New("sounds.xsb", openBytes(data), reg)

	if _, err := sb.GetCue("Weird"); !errors.Is(err, ErrUnsupportedVariationType) {
		t.Errorf("GetCue() error = %v, want ErrUnsupportedVariationType", err)
	}
}

func TestGetCue_NestedComplexSound(t *testing.T) {
	t.Parallel()

	reg, bank := testBank(t)

	// Sound 0 is complex and nests sound 1, which references track 1.
	data := banktest.BuildSoundBank(banktest.SoundBankSpec{
		WaveBanks: []string{"Waves"},
		CueNames:  []string{"Layered"},
		Simple:    []int{0},
		Sounds: []banktest.SoundSpec{
			{Complex: true, Clips: []int{1}},
			{TrackIndex: 1, WaveBankIndex: 0},
		},
	})

	sb := New("sounds.xsb", openBytes(data), reg)

	cue, err := sb.GetCue("Layered")
	if err != nil {
		t.Fatalf("GetCue() error = %v", err)
	}

	simple, ok := cue.(*Simple)
	if !ok {
		t.Fatalf("cue type = %T, want *Simple", cue)
	}
	if !simple.Sound().Complex() {
		t.Fatal("Sound().Complex() = false, want true")
	}
	if len(simple.Sound().Clips()) != 1 {
		t.Fatalf("len(Clips()) = %d, want 1", len(simple.Sound().Clips()))
	}

	wave, err := cue.Wave()
	if err != nil {
		t.Fatalf("Wave() error = %v", err)
	}
	if wave != bank.Entries[1] {
		t.Error("Wave() did not resolve through the nested clip")
	}
}

func TestResolveDirect_OutOfRange(t *testing.T) {
	t.Parallel()

	reg, _ := testBank(t)

	tests := []struct {
		name  string
		track uint16
		bank  uint8
	}{
		{"bank index past reference list", 0, 5},
		{"track index past bank entries", 99, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data := banktest.BuildSoundBank(banktest.SoundBankSpec{
				WaveBanks: []string{"Waves"},
				CueNames:  []string{"A"},
				Simple:    []int{0},
				Sounds:    []banktest.SoundSpec{{TrackIndex: tt.track, WaveBankIndex: tt.bank}},
			})

			sb := New("sounds.xsb", openBytes(data), reg)

			cue, err := sb.GetCue("A")
			if err != nil {
				t.Fatalf("GetCue() error = %v", err)
			}

			if _, err := cue.Wave(); !errors.Is(err, ErrOutOfRangeReference) {
				t.Errorf("Wave() error = %v, want ErrOutOfRangeReference", err)
			}
		})
	}
}

func TestCueNameSplit(t *testing.T) {
	t.Parallel()

	reg, _ := testBank(t)

	// "A\0BB\0" must split into ["A", "BB"], simple cues named first.
	data := banktest.BuildSoundBank(banktest.SoundBankSpec{
		WaveBanks: []string{"Waves"},
		CueNames:  []string{"A", "BB"},
		Simple:    []int{0, 0},
		Sounds:    []banktest.SoundSpec{{TrackIndex: 0, WaveBankIndex: 0}},
	})

	sb := New("sounds.xsb", openBytes(data), reg)

	for _, name := range []string{"A", "BB"} {
		cue, err := sb.GetCue(name)
		if err != nil {
			t.Fatalf("GetCue(%q) error = %v", name, err)
		}
		if cue.Name() != name {
			t.Errorf("Name() = %q, want %q", cue.Name(), name)
		}
	}
}

type recordingPlayer struct {
	waves []*audio.Wave
}

func (p *recordingPlayer) Play(w *audio.Wave) error {
	p.waves = append(p.waves, w)
	return nil
}

func TestPlayCue(t *testing.T) {
	t.Parallel()

	reg, bank := testBank(t)

	data := banktest.BuildSoundBank(banktest.SoundBankSpec{
		WaveBanks: []string{"Waves"},
		CueNames:  []string{"Explosion"},
		Simple:    []int{0},
		Sounds:    []banktest.SoundSpec{{TrackIndex: 2, WaveBankIndex: 0}},
	})

	sb := New("sounds.xsb", openBytes(data), reg)

	player := &recordingPlayer{}
	if err := sb.PlayCue("Explosion", player); err != nil {
		t.Fatalf("PlayCue() error = %v", err)
	}

	if len(player.waves) != 1 || player.waves[0] != bank.Entries[2] {
		t.Errorf("player received %v, want exactly wave-bank entry 2", player.waves)
	}
}
