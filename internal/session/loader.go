/*------------------------------------------------------------------------------
* loader.go : default Loader wiring C12 (cache) and the legacy table reader
*             together behind the Factory's Loader func type
*-----------------------------------------------------------------------------*/
package session

import (
	"path/filepath"

	"taupgo/internal/cache"
	"taupgo/internal/logging"
	"taupgo/internal/modelfile"
)

// NewFileLoader returns a Loader that serves a model from cacheDir's
// snapshot store when it is fresh, rebuilding it from
// {modelName}.hed/{modelName}.tbl under modelPath on a cache miss.
func NewFileLoader(cacheDir string) (Loader, error) {
	store, err := cache.NewStore(cacheDir)
	if err != nil {
		return nil, err
	}
	return func(modelName, modelPath string) (*Model, error) {
		hedPath := filepath.Join(modelPath, modelName+".hed")
		tblPath := filepath.Join(modelPath, modelName+".tbl")
		sourcePaths := []string{hedPath, tblPath}

		snap, err := store.Load(modelName, sourcePaths)
		if err != nil {
			logging.Trace(2, "loader: cache miss for model %s: %v\n", modelName, err)
			snap, err = modelfile.ReadHeaderAndTable(hedPath, tblPath)
			if err != nil {
				return nil, err
			}
			if saveErr := store.Save(modelName, snap); saveErr != nil {
				logging.Trace(2, "loader: caching model %s failed: %v\n", modelName, saveErr)
			}
		}

		return &Model{
			Name:        modelName,
			Conv:        snap.Conv,
			EarthP:      snap.EarthP,
			EarthS:      snap.EarthS,
			UpGoingP:    snap.UpGoingP,
			UpGoingS:    snap.UpGoingS,
			Branches:    snap.Branches,
			VSurfaceKmS: snap.Conv.RefVelKmS,
		}, nil
	}, nil
}
