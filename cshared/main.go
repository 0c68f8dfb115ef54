// C ABI exports over pkg/ffi, for embedding the engine in non-Go hosts
// (Android JNI wrappers, iOS, desktop apps). Build with:
//
//	go build -buildmode=c-shared -o libdictlite.so ./cshared
//
// Every string returned through an out-parameter (and the version string) is
// owned by the caller and must be released with dict_free_string.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	"github.com/liliang-cn/dictlite/pkg/ffi"
)

//export dict_init
func dict_init(dbPath *C.char) C.int {
	if dbPath == nil {
		return C.int(ffi.NullPointer)
	}
	return C.int(ffi.Init(C.GoString(dbPath)))
}

//export dict_search
func dict_search(query *C.char, limit, offset C.int, outJSON **C.char) C.int {
	if query == nil || outJSON == nil {
		return C.int(ffi.NullPointer)
	}
	payload, code := ffi.Search(C.GoString(query), int(limit), int(offset))
	if code != ffi.Success {
		return C.int(code)
	}
	*outJSON = C.CString(payload)
	return C.int(ffi.Success)
}

//export dict_get_definition
func dict_get_definition(wordID C.longlong, outJSON **C.char) C.int {
	if outJSON == nil {
		return C.int(ffi.NullPointer)
	}
	payload, code := ffi.GetDefinition(int64(wordID))
	if code != ffi.Success {
		return C.int(code)
	}
	*outJSON = C.CString(payload)
	return C.int(ffi.Success)
}

//export dict_close
func dict_close() C.int {
	ffi.Close()
	return C.int(ffi.Success)
}

//export dict_version
func dict_version() *C.char {
	return C.CString(ffi.Version)
}

//export dict_free_string
func dict_free_string(ptr *C.char) {
	if ptr != nil {
		C.free(unsafe.Pointer(ptr))
	}
}

func main() {}
