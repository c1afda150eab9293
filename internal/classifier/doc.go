// Package classifier owns the loaded leaf-disease model and the fixed
// category list its output vector is read against.
//
//   - categories.go: Categories, the index-to-label contract with the model.
//   - classifier.go: Model interface, Classifier (argmax + label mapping).
//   - onnx.go: ONNXModel backed by onnxruntime, loaded once at startup.
//   - errors.go: error values shared by the above.
//
// A Model is immutable after load and safe for concurrent use; Classifier adds
// no state of its own.
package classifier
