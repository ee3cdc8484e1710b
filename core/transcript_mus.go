// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the values kept in the transcript store. Field order
// is the wire order; append new fields at the end of each Marshal.
var (
	WordMUS       = wordMUS{}
	SegmentMUS    = segmentMUS{}
	TranscriptMUS = transcriptMUS{}
)

var (
	_ mus.Serializer[Word]              = WordMUS
	_ mus.Serializer[TranscriptSegment] = SegmentMUS
	_ mus.Serializer[Transcript]        = TranscriptMUS
)

type wordMUS struct{}

func (s wordMUS) Marshal(v Word, bs []byte) (n int) {
	n = ord.String.Marshal(v.Word, bs)
	n += raw.Float64.Marshal(v.Start, bs[n:])
	n += raw.Float64.Marshal(v.End, bs[n:])
	return n + raw.Float64.Marshal(v.Probability, bs[n:])
}

func (s wordMUS) Unmarshal(bs []byte) (v Word, n int, err error) {
	v.Word, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	for _, f := range []*float64{&v.Start, &v.End, &v.Probability} {
		*f, n1, err = raw.Float64.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func (s wordMUS) Size(v Word) (size int) {
	return ord.String.Size(v.Word) + 3*raw.Float64.Size(0)
}

func (s wordMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	for range 3 {
		n1, err = raw.Float64.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

type segmentMUS struct{}

func (s segmentMUS) Marshal(v TranscriptSegment, bs []byte) (n int) {
	n = varint.Int.Marshal(v.Index, bs)
	n += varint.Int.Marshal(v.Seek, bs[n:])
	n += raw.Float64.Marshal(v.Start, bs[n:])
	n += raw.Float64.Marshal(v.End, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += marshalSlice(v.Tokens, varint.Int, bs[n:])
	n += raw.Float64.Marshal(v.Temperature, bs[n:])
	n += raw.Float64.Marshal(v.AvgLogProb, bs[n:])
	n += raw.Float64.Marshal(v.CompressionRatio, bs[n:])
	n += raw.Float64.Marshal(v.NoSpeechProb, bs[n:])
	return n + marshalSlice(v.Words, WordMUS, bs[n:])
}

func (s segmentMUS) Unmarshal(bs []byte) (v TranscriptSegment, n int, err error) {
	v.Index, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Seek, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	for _, f := range []*float64{&v.Start, &v.End} {
		*f, n1, err = raw.Float64.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Tokens, n1, err = unmarshalSlice[int](varint.Int, bs[n:])
	n += n1
	if err != nil {
		return
	}
	for _, f := range []*float64{&v.Temperature, &v.AvgLogProb, &v.CompressionRatio, &v.NoSpeechProb} {
		*f, n1, err = raw.Float64.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	v.Words, n1, err = unmarshalSlice[Word](WordMUS, bs[n:])
	n += n1
	return
}

func (s segmentMUS) Size(v TranscriptSegment) (size int) {
	size = varint.Int.Size(v.Index) + varint.Int.Size(v.Seek)
	size += ord.String.Size(v.Text)
	size += sizeSlice(v.Tokens, varint.Int)
	size += 6 * raw.Float64.Size(0)
	return size + sizeSlice(v.Words, WordMUS)
}

func (s segmentMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type transcriptMUS struct{}

func (s transcriptMUS) Marshal(v Transcript, bs []byte) (n int) {
	for _, f := range []string{v.ID, v.JobID, v.MeetingID, v.AudioPath, v.Language} {
		n += ord.String.Marshal(f, bs[n:])
	}
	n += marshalSlice(v.Segments, SegmentMUS, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += ord.String.Marshal(v.Summary, bs[n:])
	return n + marshalTime(v.CreatedAt, bs[n:])
}

func (s transcriptMUS) Unmarshal(bs []byte) (v Transcript, n int, err error) {
	var n1 int
	for _, f := range []*string{&v.ID, &v.JobID, &v.MeetingID, &v.AudioPath, &v.Language} {
		*f, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	v.Segments, n1, err = unmarshalSlice[TranscriptSegment](SegmentMUS, bs[n:])
	n += n1
	if err != nil {
		return
	}
	for _, f := range []*string{&v.Text, &v.Summary} {
		*f, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	v.CreatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (s transcriptMUS) Size(v Transcript) (size int) {
	for _, f := range []string{v.ID, v.JobID, v.MeetingID, v.AudioPath, v.Language, v.Text, v.Summary} {
		size += ord.String.Size(f)
	}
	size += sizeSlice(v.Segments, SegmentMUS)
	return size + varint.Int64.Size(timeMicros(v.CreatedAt))
}

func (s transcriptMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

// Slices are a varint length followed by the elements. A zero length
// decodes to nil.

func marshalSlice[T any](vs []T, elem mus.Serializer[T], bs []byte) (n int) {
	n = varint.Int.Marshal(len(vs), bs)
	for _, v := range vs {
		n += elem.Marshal(v, bs[n:])
	}
	return
}

func unmarshalSlice[T any](elem mus.Serializer[T], bs []byte) (vs []T, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	// Every element takes at least one byte.
	if length < 0 || length > len(bs)-n {
		return nil, n, ErrBadLength
	}
	if length == 0 {
		return nil, n, nil
	}
	vs = make([]T, length)
	var n1 int
	for i := range vs {
		vs[i], n1, err = elem.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return
}

func sizeSlice[T any](vs []T, elem mus.Serializer[T]) (size int) {
	size = varint.Int.Size(len(vs))
	for _, v := range vs {
		size += elem.Size(v)
	}
	return
}

// Times are stored as UTC microseconds; the zero time round-trips as zero.

func timeMicros(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(timeMicros(t), bs)
}

func unmarshalTime(bs []byte) (t time.Time, n int, err error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil || us == 0 {
		return time.Time{}, n, err
	}
	return time.UnixMicro(us).UTC(), n, nil
}
