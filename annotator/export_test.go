package annotator

// DecodeAllDocs exports decodeAllDocs for testing.
var DecodeAllDocs = decodeAllDocs
