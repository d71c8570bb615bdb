package table

import (
	"errors"
	"fmt"
	"math"

	"github.com/1siamBot/asset-exporter/pipeline/asset"
	"github.com/1siamBot/asset-exporter/pipeline/value"
)

// MasterIndexName is the name of the asset listing every bundle's assets.
const MasterIndexName = "master_index"

// ErrNoMasterIndex is returned by BuildIndex when no asset carries
// MasterIndexName.
var ErrNoMasterIndex = errors.New("no master index asset")

// IndexEntry maps a bundle asset's name to the hashed GUID catalogs use to
// refer to it.
type IndexEntry struct {
	Name       string
	HashedGUID int32
}

// BuildIndex concatenates the asset indices of every bundle listed by the
// master index, in bundle order.
func BuildIndex(assets []*asset.Record, tree func(*asset.MonoBehaviour) value.Value) ([]IndexEntry, error) {
	var master *asset.Record
	for _, rec := range assets {
		if rec.Name == MasterIndexName {
			master = rec
			break
		}
	}
	if master == nil {
		return nil, ErrNoMasterIndex
	}
	mb, ok := master.Payload.(*asset.MonoBehaviour)
	if !ok || mb == nil {
		return nil, fmt.Errorf("%s is a %s: %w", MasterIndexName, master.ClassName(), asset.ErrMalformed)
	}

	root, err := tree(mb).AsMap()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MasterIndexName, err)
	}
	bundles, err := root.GetSeq("AssetBundles")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MasterIndexName, err)
	}

	var index []IndexEntry
	for i, b := range bundles {
		bundle, err := b.AsMap()
		if err != nil {
			return nil, fmt.Errorf("%s bundle %d: %w", MasterIndexName, i, err)
		}
		indices, err := bundle.GetSeq("_assetIndices")
		if err != nil {
			return nil, fmt.Errorf("%s bundle %d: %w", MasterIndexName, i, err)
		}
		for j, ix := range indices {
			e, err := indexEntry(ix)
			if err != nil {
				return nil, fmt.Errorf("%s bundle %d index %d: %w", MasterIndexName, i, j, err)
			}
			index = append(index, e)
		}
	}
	return index, nil
}

func indexEntry(v value.Value) (IndexEntry, error) {
	m, err := v.AsMap()
	if err != nil {
		return IndexEntry{}, err
	}
	name, err := m.GetString("_name")
	if err != nil {
		return IndexEntry{}, err
	}
	g, err := m.Get("_hashedGuid")
	if err != nil {
		return IndexEntry{}, err
	}
	guid, err := g.AsInt32()
	if err != nil {
		// Some dumps carry the unsigned bit pattern.
		i, ierr := g.AsInt()
		if ierr != nil || i < 0 || i > math.MaxUint32 {
			return IndexEntry{}, err
		}
		guid = int32(uint32(i))
	}
	return IndexEntry{Name: name, HashedGUID: guid}, nil
}
