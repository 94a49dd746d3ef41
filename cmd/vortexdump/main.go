// Command vortexdump inspects a vortex file: it prints the schema, the
// field names and the chunk count. Footer byte ranges and encodings are
// not printed.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/thomascherickal/vortex/filefmt"
)

type osFile struct{ f *os.File }

func (o osFile) Size() (int64, error) {
	fi, err := o.f.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

func (o osFile) ReadAtInto(offset int64, buf []byte) error {
	n, err := o.f.ReadAt(buf, offset)
	return filefmt.RequireExact(n, len(buf), err)
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: vortexdump <file>")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "vortexdump:", err)
		os.Exit(1)
	}
	defer f.Close()

	r, err := filefmt.Open(osFile{f})
	if err != nil {
		fmt.Fprintln(os.Stderr, "vortexdump:", err)
		os.Exit(1)
	}

	dt := r.DType()
	fmt.Printf("schema: %s\n", dt)
	fmt.Printf("fields: %v\n", dt.FieldNames())
	fmt.Printf("chunks: %d\n", r.NumChunks())
}
