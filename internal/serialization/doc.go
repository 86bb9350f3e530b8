// Package serialization reads and writes host arrays in the SafeTensors format:
//
//	[8 bytes: header size (uint64 LE)]
//	[header: JSON object, name -> {dtype, shape, data_offsets}, optional "__metadata__"]
//	[data: raw little-endian bytes, arrays packed in name order]
//
// Every array is a *ndarray.Array, the common format of the bridge, so a file
// loaded here can be converted into any registered framework.
//
// Example:
//
//	f, err := serialization.ReadSafeTensors("volume.safetensors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, name := range f.Names() {
//	    fmt.Println(name, f.Arrays[name].Shape())
//	}
package serialization
