// Package whisper implements ai.ModelLoader and ai.Recognizer on top of the
// whisper.cpp command line tool.
//
// A Loader resolves the ggml model file for a configuration and checks the
// executable once; the resulting Recognizer is immutable and may be shared
// by any number of concurrent runs. Each Transcribe call optionally converts
// the input to 16 kHz mono PCM with ffmpeg, runs whisper.cpp with full JSON
// output (-ojf) into a private temporary directory, and parses the result
// into core.TranscriptSegment values.
//
// Model files are looked up as <ModelDir>/ggml-<size>.bin. For int8 compute
// types a quantized ggml-<size>-q8_0.bin is preferred when present.
package whisper
