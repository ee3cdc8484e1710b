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

package storage

import (
	"fmt"

	"github.com/poiesic/minutes/core"
)

// MarshalTranscript encodes a transcript in MUS format for the transcript store.
func MarshalTranscript(t *core.Transcript) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil transcript", ErrSerializationFailed)
	}
	buf := make([]byte, core.TranscriptMUS.Size(*t))
	core.TranscriptMUS.Marshal(*t, buf)
	return buf, nil
}

// UnmarshalTranscript decodes a MUS-encoded transcript. Trailing bytes are
// treated as corruption.
func UnmarshalTranscript(data []byte) (*core.Transcript, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty transcript document", ErrSerializationFailed)
	}
	t, n, err := core.TranscriptMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}
	return &t, nil
}
