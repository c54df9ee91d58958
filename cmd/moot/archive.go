// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/moot/record"
)

// exportRecordsAction dumps the whole record store into an RLP stream file.
func exportRecordsAction(ctx *cli.Context) error {
	initLogger(ctx)

	output := ctx.Args().First()
	if output == "" {
		return errors.New("output file not specified")
	}

	db := openRecordStore(makeDataDir(ctx))
	defer db.Close()

	records, err := db.Query(context.Background(), &record.Filter{})
	if err != nil {
		return errors.Wrap(err, "query records")
	}

	file, err := os.Create(output)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Println(">> Exporting records <<")
	bar := pb.New64(int64(len(records))).
		SetMaxWidth(90).
		Start()
	defer func() { bar.NotPrint = true }()

	w := bufio.NewWriter(file)
	for _, r := range records {
		if err := rlp.Encode(w, r); err != nil {
			return errors.Wrap(err, "encode record")
		}
		bar.Add64(1)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	bar.Finish()

	fmt.Printf("Exported %v records to %v\n", len(records), output)
	return nil
}

// importRecordsAction replays an RLP stream file into the record store.
// Records failing signature verification are skipped, not fatal, so a
// partially damaged archive still restores what it can.
func importRecordsAction(ctx *cli.Context) error {
	initLogger(ctx)

	input := ctx.Args().First()
	if input == "" {
		return errors.New("input file not specified")
	}

	file, err := os.Open(input)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	db := openRecordStore(makeDataDir(ctx))
	defer db.Close()

	fmt.Println(">> Importing records <<")
	bar := pb.New64(info.Size()).
		SetUnits(pb.U_BYTES).
		SetMaxWidth(90).
		Start()
	defer func() { bar.NotPrint = true }()

	exit := handleExitSignal()
	stream := rlp.NewStream(bar.NewProxyReader(bufio.NewReader(file)), 0)

	var imported, skipped int
	for {
		var r record.Record
		if err := stream.Decode(&r); err != nil {
			if err == io.EOF {
				break
			}
			return errors.Wrap(err, "decode record")
		}
		if !r.Verify() {
			skipped++
			continue
		}
		stored, err := db.Store(&r)
		if err != nil {
			return errors.Wrap(err, "store record")
		}
		if stored {
			imported++
		} else {
			skipped++
		}

		select {
		case <-exit.Done():
			return exit.Err()
		default:
		}
	}
	bar.Finish()

	fmt.Printf("Imported %v records (%v skipped) from %v\n", imported, skipped, input)
	return nil
}
