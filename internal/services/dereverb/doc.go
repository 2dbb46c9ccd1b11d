// Package dereverb invokes the dereverberation engine that removes room echo
// from isolated vocal tracks. Two runtimes exist (CUDA/PyTorch and ONNX);
// they are interchangeable and selected by configuration.
package dereverb
