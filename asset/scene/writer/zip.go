package writer

import (
	"archive/zip"
	"encoding/gob"
	"fmt"
	"os"
	"time"

	"github.com/rigel-pt/rigel/asset/scene"
	"github.com/rigel-pt/rigel/log"
)

const (
	dataFile = "scene.bin"
)

type zipSceneWriter struct {
	logger    log.Logger
	sceneFile string
}

// Create a new zip scene writer.
func newZipSceneWriter(sceneFile string) *zipSceneWriter {
	return &zipSceneWriter{
		logger:    log.New("zip scene writer"),
		sceneFile: sceneFile,
	}
}

// Write a compiled scene to the writer output file.
func (w *zipSceneWriter) Write(sc *scene.Scene) error {
	w.logger.Noticef(`writing compiled scene to "%s"`, w.sceneFile)
	start := time.Now()

	outFile, err := os.Create(w.sceneFile)
	if err != nil {
		return fmt.Errorf("zipSceneWriter: %s", err.Error())
	}
	defer outFile.Close()

	zw := zip.NewWriter(outFile)

	cw, err := zw.Create(dataFile)
	if err != nil {
		zw.Close()
		return fmt.Errorf("zipSceneWriter: failed to create %s: %s", dataFile, err.Error())
	}
	encoder := gob.NewEncoder(cw)
	err = encoder.Encode(sc)
	if err != nil {
		zw.Close()
		return fmt.Errorf("zipSceneWriter: failed to serialize scene: %s", err.Error())
	}

	err = zw.Close()
	if err != nil {
		return fmt.Errorf("zipSceneWriter: %s", err.Error())
	}

	w.logger.Noticef("wrote compiled scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return nil
}
