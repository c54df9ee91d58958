// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/moot/cry"
)

func masterKeyAction(ctx *cli.Context) error {
	hasImportFlag := ctx.Bool(importMasterKeyFlag.Name)
	hasExportFlag := ctx.Bool(exportMasterKeyFlag.Name)

	if hasImportFlag && hasExportFlag {
		return errors.New("flag import and export are mutually exclusive")
	}

	if !hasImportFlag && !hasExportFlag {
		master, err := loadOrGenerateMasterKey(masterKeyPath(ctx))
		if err != nil {
			return err
		}
		fmt.Println("Master:", cry.PubKeyOf(master))
		return nil
	}

	if hasImportFlag {
		if isatty.IsTerminal(os.Stdin.Fd()) {
			fmt.Println("Input JSON keystore content (end with ctrl-d):")
		}
		keyjson, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(keyjson, &map[string]interface{}{}); err != nil {
			return errors.WithMessage(err, "unmarshal")
		}
		password, err := readPasswordFromNewTTY("Enter passphrase: ")
		if err != nil {
			return err
		}

		key, err := keystore.DecryptKey(keyjson, password)
		if err != nil {
			return errors.WithMessage(err, "decrypt")
		}

		if err := crypto.SaveECDSA(masterKeyPath(ctx), key.PrivateKey); err != nil {
			return err
		}
		fmt.Println("Master key imported:", cry.PubKeyOf(secp256k1.PrivKeyFromBytes(crypto.FromECDSA(key.PrivateKey))))
		return nil
	}

	// export
	master, err := loadOrGenerateMasterKey(masterKeyPath(ctx))
	if err != nil {
		return err
	}

	password, err := readPasswordFromNewTTY("Enter passphrase: ")
	if err != nil {
		return err
	}
	if password == "" {
		return errors.New("non-empty passphrase required")
	}
	confirm, err := readPasswordFromNewTTY("Confirm passphrase: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passphrase confirmation mismatch")
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return err
	}
	ethKey := master.ToECDSA()
	keyjson, err := keystore.EncryptKey(&keystore.Key{
		PrivateKey: ethKey,
		Address:    crypto.PubkeyToAddress(ethKey.PublicKey),
		Id:         id,
	}, password, keystore.StandardScryptN, keystore.StandardScryptP)
	if err != nil {
		return err
	}
	fmt.Println(string(keyjson))
	return nil
}
