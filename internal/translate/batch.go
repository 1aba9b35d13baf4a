package translate

// BatchSize picks how many cues go into one provider request, as a step
// function of the mean cue text length. Short cues pack densely; long cues
// get smaller batches to keep prompts bounded.
func BatchSize(texts []string) int {
	if len(texts) == 0 {
		return 10
	}
	total := 0
	for _, text := range texts {
		total += len([]rune(text))
	}
	avg := float64(total) / float64(len(texts))
	switch {
	case avg < 30:
		return 30
	case avg < 60:
		return 20
	case avg < 100:
		return 15
	default:
		return 10
	}
}

// batch is one contiguous run of cues sent in a single provider request.
type batch struct {
	number int // 0-based position among the job's batches
	first  int // index of the batch's first cue in the full cue list
	texts  []string
}

// makeBatches slices the ordered cue texts into contiguous runs of size. The
// final batch may be smaller.
func makeBatches(texts []string, size int) []batch {
	if size <= 0 {
		size = 10
	}
	var batches []batch
	for start := 0; start < len(texts); start += size {
		end := start + size
		if end > len(texts) {
			end = len(texts)
		}
		batches = append(batches, batch{
			number: len(batches),
			first:  start,
			texts:  texts[start:end],
		})
	}
	return batches
}
