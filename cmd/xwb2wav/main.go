// SPDX-License-Identifier: EPL-2.0

// Command xwb2wav extracts the entries of a wave bank into individual
// audio files: PCM and ADPCM entries become .wav files, WMA/M4A entries
// are written out with their native extension.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/edsrzf/mmap-go"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/xactbank/audio"
	"github.com/ik5/xactbank/formats/wavebank"
)

var (
	inputPath  string
	outputPath string
)

func init() {
	flag.StringVar(&inputPath, "i", "", "Input wave bank (.xwb) file (required)")
	flag.StringVar(&outputPath, "o", "", "Output directory (defaults to the bank name)")
}

func main() {
	flag.Parse()

	if inputPath == "" {
		fmt.Println("Error: input file is required (-i bank.xwb)")
		flag.Usage()
		os.Exit(1)
	}

	bank, cleanup, err := openBank(inputPath)
	if err != nil {
		fmt.Printf("Error decoding %s: %v\n", inputPath, err)
		os.Exit(1)
	}
	defer cleanup()

	outDir := outputPath
	if outDir == "" {
		outDir = bank.Name
	}
	if outDir == "" {
		outDir = strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Printf("Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	written := 0
	for i, wave := range bank.Entries {
		path, err := writeEntry(outDir, bank.Name, i, wave)
		if err != nil {
			fmt.Printf("Error writing entry %d: %v\n", i, err)
			os.Exit(1)
		}
		fmt.Printf("  %s (%d Hz, %d ch, %s)\n", path, wave.SampleRate, wave.Channels, wave.Kind)
		written++
	}

	fmt.Printf("Extracted %d entries from bank %q to %s\n", written, bank.Name, outDir)
}

// openBank memory-maps the input file and decodes it. The mapping must
// outlive the decode only, since every payload is copied out, but the
// cleanup is returned anyway so main controls unmap ordering.
func openBank(path string) (*audio.WaveBank, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	cleanup := func() {
		m.Unmap()
		f.Close()
	}

	bank, err := wavebank.Decoder{}.Decode(bytes.NewReader(m))
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return bank, cleanup, nil
}

func writeEntry(dir, bankName string, i int, wave *audio.Wave) (string, error) {
	base := fmt.Sprintf("%s_%03d", bankName, i)
	if bankName == "" {
		base = fmt.Sprintf("entry_%03d", i)
	}

	if wave.Kind != audio.KindPCM {
		path := filepath.Join(dir, base+"."+wave.Kind.String())
		return path, os.WriteFile(path, wave.Data, 0o644)
	}

	path := filepath.Join(dir, base+".wav")
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	buf, err := wave.IntBuffer()
	if err != nil {
		return "", err
	}

	enc := gowav.NewEncoder(out, wave.SampleRate, 16, wave.Channels, 1)
	if err := enc.Write(buf); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}

	return path, nil
}
