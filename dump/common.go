package dump

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aura-nw/soulbound/contracts/soulbound"
)

// ID is a unique identifier of the dump prepared according to the model
// described in the current package.
type ID struct {
	// Label of the dump source (e.g. testnet, mainnet).
	Label string
	// Number of tokens issued by the dumped ledger.
	Tokens uint64
}

// String returns hyphen-separated ID fields.
func (x ID) String() string {
	return x.Label + sep + strconv.FormatUint(x.Tokens, 10)
}

// decodes ID fields from the hyphen-separated string.
func (x *ID) decodeString(s string) error {
	ss := strings.Split(s, sep)
	if len(ss) < 2 {
		return fmt.Errorf("expected '%s'-separated string with at least 2 items", sep)
	}

	n, err := strconv.ParseUint(ss[1], 10, 64)
	if err != nil {
		return fmt.Errorf("decode token number from '%s': %w", ss[1], err)
	}

	x.Label = ss[0]
	x.Tokens = n

	return nil
}

// global encoding of binary values.
var _encoding = base64.StdEncoding

// ContractState is the dumped information about the ledger.
type ContractState struct {
	Info      soulbound.ContractInfo `json:"info"`
	Minter    string                 `json:"minter"`
	Version   soulbound.VersionInfo  `json:"version"`
	NumTokens uint64                 `json:"num_tokens"`
}

// StateOf collects ContractState of the ledger.
func StateOf(c *soulbound.Contract) (ContractState, error) {
	var (
		res ContractState
		err error
	)

	if res.Info, err = c.ContractInfo(); err != nil {
		return res, fmt.Errorf("contract info: %w", err)
	}

	if res.Minter, err = c.Minter(); err != nil {
		return res, fmt.Errorf("minter: %w", err)
	}

	if res.Version, err = c.Version(); err != nil {
		return res, fmt.Errorf("version: %w", err)
	}

	if res.NumTokens, err = c.NumTokens(); err != nil {
		return res, fmt.Errorf("number of tokens: %w", err)
	}

	return res, nil
}

// dumpContractState is a JSON-encoded information about the dumped contract.
type dumpContractState struct {
	Name  string        `json:"name"`
	State ContractState `json:"state"`
}

// dumpStreams groups data streams for contracts' states and storages.
type dumpStreams struct {
	contracts, storageItems io.ReadWriteCloser
}

// close closes all streams.
func (x *dumpStreams) close() {
	if x.storageItems != nil {
		_ = x.storageItems.Close()
	}
	if x.contracts != nil {
		_ = x.contracts.Close()
	}
}

const (
	// word separator used in dump file naming
	sep = "-"
	// suffix of file with contracts' states
	statesFileSuffix = "contracts.json"
	// suffix of file with storage items
	storageFileSuffix = "storage.csv"
)

// initDumpStreams opens data streams for the dump files located in the
// specified directory. If read flag is set, streams are read-only. Otherwise,
// files must not exist, and streams are write only.
func initDumpStreams(d *dumpStreams, dir string, id ID, read bool) error {
	var err error

	pathStorage := filepath.Join(dir, strings.Join([]string{id.String(), storageFileSuffix}, sep))
	pathContracts := filepath.Join(dir, strings.Join([]string{id.String(), statesFileSuffix}, sep))

	if !read {
		if err = checkFileNotExists(pathStorage); err != nil {
			return err
		}
		if err = checkFileNotExists(pathContracts); err != nil {
			return err
		}
	}

	var flag int
	var perm os.FileMode

	if read {
		flag = os.O_RDONLY
	} else {
		flag = os.O_CREATE | os.O_WRONLY
		perm = 0600
	}

	d.storageItems, err = os.OpenFile(pathStorage, flag, perm)
	if err != nil {
		return fmt.Errorf("open file with storage items: %w", err)
	}

	d.contracts, err = os.OpenFile(pathContracts, flag, perm)
	if err != nil {
		_ = d.storageItems.Close()
		d.storageItems = nil
		return fmt.Errorf("open file with contract states: %w", err)
	}

	return nil
}

// checkFileNotExists checks that there is no file at the specified path.
func checkFileNotExists(p string) error {
	_, err := os.Stat(p)
	if !os.IsNotExist(err) {
		if err == nil {
			err = os.ErrExist
		}
		return fmt.Errorf("file '%s' absence check failed: %w", p, err)
	}
	return nil
}
