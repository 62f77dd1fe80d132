// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"

	"github.com/pdiddy/dataprep/pkg/types"
)

// Options controls ConvertFile.
type Options struct {
	// TrainRatio is the training split fraction. Zero uses DefaultTrainRatio.
	TrainRatio float64

	// Rand drives the shuffle. It must be non-nil.
	Rand *rand.Rand

	// Counter, when set, adds token totals to the result.
	Counter TokenCounter
}

// Result summarizes a conversion run. Every block yields one record, so
// Train.Records + Valid.Records == Blocks.
type Result struct {
	Blocks  int
	Skipped int
	Train   Stats
	Valid   Stats
}

// speakerParser is implemented by parsers that can report speaker labels.
type speakerParser interface {
	ParseSpeakers(block string) (types.ChatRecord, []string, error)
}

// ParseBlocks parses each block with p and returns one record per block.
// A block that fails to parse is reported to w and kept as the partial
// record the parser returned, which holds at least the system message.
func ParseBlocks(blocks []string, p Parser, w io.Writer) (records []types.ChatRecord, skipped int) {
	sp, reportsSpeakers := p.(speakerParser)

	for i, block := range blocks {
		var (
			rec types.ChatRecord
			err error
		)
		if reportsSpeakers {
			var speakers []string
			rec, speakers, err = sp.ParseSpeakers(block)
			if err == nil && len(speakers) > 2 {
				fmt.Fprintf(w, "warning: block %d has %d speakers (%s); non-assistant speakers map to user\n",
					i+1, len(speakers), strings.Join(speakers, ", "))
			}
		} else {
			rec, err = p.Parse(block)
		}
		if err != nil {
			fmt.Fprintf(w, "skipped: block %d (%v)\n", i+1, err)
			skipped++
		}
		records = append(records, rec)
	}
	return records, skipped
}

// ConvertFile reads blank-line separated blocks from inputPath, parses them
// with p, shuffles, and writes the train and validation splits as JSONL.
func ConvertFile(inputPath, trainPath, validPath string, p Parser, opts Options, w io.Writer) (Result, error) {
	if opts.Rand == nil {
		return Result{}, errors.New("dataset: Options.Rand is required")
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, fmt.Errorf("input file %s not found", inputPath)
		}
		return Result{}, fmt.Errorf("reading %s: %w", inputPath, err)
	}

	blocks := Blocks(string(data))
	records, skipped := ParseBlocks(blocks, p, w)
	result := Result{
		Blocks:  len(blocks),
		Skipped: skipped,
	}

	train, valid := SplitTrainValid(records, opts.TrainRatio, opts.Rand)

	if err := WriteJSONL(trainPath, train); err != nil {
		return result, err
	}
	if err := WriteJSONL(validPath, valid); err != nil {
		return result, err
	}

	result.Train = Measure(train, opts.Counter)
	result.Valid = Measure(valid, opts.Counter)

	fmt.Fprintln(w, "conversion complete")
	fmt.Fprintf(w, "train set saved to %s: %d records\n", trainPath, result.Train.Records)
	fmt.Fprintf(w, "validation set saved to %s: %d records\n", validPath, result.Valid.Records)
	if opts.Counter != nil {
		fmt.Fprintf(w, "tokens: train %d, validation %d\n", result.Train.Tokens, result.Valid.Tokens)
	}
	if skipped > 0 {
		fmt.Fprintf(w, "%d of %d blocks had no usable turns\n", skipped, len(blocks))
	}
	return result, nil
}
