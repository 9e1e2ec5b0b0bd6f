package utils

import (
	"bytes"
	"encoding/binary"
	"log"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/vkngwrapper/core/core1_0"
)

const pipelineCacheHeaderVersionOne uint32 = 1

// pipelineCacheHeader is the leading part of every pipeline cache blob, little-endian
// whatever the host:
//
//	offset  size  meaning
//	     0     4  length of the header in bytes
//	     4     4  header version
//	     8     4  vendor ID
//	    12     4  device ID
//	    16    16  pipeline cache UUID
type pipelineCacheHeader struct {
	HeaderLength  uint32
	HeaderVersion uint32
	VendorID      uint32
	DeviceID      uint32
	CacheUUID     uuid.UUID
}

// cacheIdentity is what a cache blob must have been produced by to be reused.
type cacheIdentity struct {
	VendorID  uint32
	DeviceID  uint32
	CacheUUID uuid.UUID
}

func readPipelineCacheHeader(data []byte) (pipelineCacheHeader, error) {
	var header pipelineCacheHeader
	err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &header)
	if err != nil {
		return header, errors.Wrap(err, "read pipeline cache header")
	}

	return header, nil
}

// validatePipelineCache returns nil when data can be handed to the driver as initial
// cache contents for the device described by identity.
func validatePipelineCache(data []byte, identity cacheIdentity) error {
	header, err := readPipelineCacheHeader(data)
	if err != nil {
		return err
	}

	if header.HeaderLength < uint32(binary.Size(header)) || int(header.HeaderLength) > len(data) {
		return errors.Newf("bad header length 0x%x", header.HeaderLength)
	}
	if header.HeaderVersion != pipelineCacheHeaderVersionOne {
		return errors.Newf("unsupported cache header version 0x%x", header.HeaderVersion)
	}
	if header.VendorID != identity.VendorID {
		return errors.Newf("vendor ID mismatch: cache contains 0x%x, driver expects 0x%x", header.VendorID, identity.VendorID)
	}
	if header.DeviceID != identity.DeviceID {
		return errors.Newf("device ID mismatch: cache contains 0x%x, driver expects 0x%x", header.DeviceID, identity.DeviceID)
	}
	if header.CacheUUID != identity.CacheUUID {
		return errors.Newf("UUID mismatch: cache contains %s, driver expects %s", header.CacheUUID, identity.CacheUUID)
	}

	return nil
}

// readPipelineCacheFile returns the reusable contents of path, or nil on a miss. Files
// that belong to another driver or device are removed so the next save repopulates them.
func readPipelineCacheFile(path string, identity cacheIdentity) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Printf("Pipeline cache miss: %s", path)
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "read pipeline cache %s", path)
	}

	err = validatePipelineCache(data, identity)
	if err != nil {
		log.Printf("Discarding pipeline cache %s: %s", path, err)
		// not important if this fails
		_ = os.Remove(path)
		return nil, nil
	}

	log.Printf("Pipeline cache hit: %s (%d bytes)", path, len(data))
	return data, nil
}

// PipelineCache persists driver pipeline cache data between runs.
type PipelineCache struct {
	path  string
	cache core1_0.PipelineCache
}

// LoadPipelineCache creates a pipeline cache seeded from path. An empty path disables
// the cache, in which case the returned value is nil.
func LoadPipelineCache(device core1_0.Device, physicalDevice core1_0.PhysicalDevice, path string) (*PipelineCache, error) {
	if path == "" {
		return nil, nil
	}

	properties, err := physicalDevice.Properties()
	if err != nil {
		return nil, errors.Wrap(err, "read physical device properties")
	}

	initialData, err := readPipelineCacheFile(path, cacheIdentity{
		VendorID:  properties.VendorID,
		DeviceID:  properties.DeviceID,
		CacheUUID: properties.PipelineCacheUUID,
	})
	if err != nil {
		return nil, err
	}

	cache, _, err := device.CreatePipelineCache(nil, core1_0.PipelineCacheCreateInfo{
		InitialData: initialData,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create pipeline cache")
	}

	return &PipelineCache{path: path, cache: cache}, nil
}

// Handle returns the cache to pass to pipeline creation; nil when caching is disabled.
func (c *PipelineCache) Handle() core1_0.PipelineCache {
	if c == nil {
		return nil
	}
	return c.cache
}

func (c *PipelineCache) Save() error {
	if c == nil || c.cache == nil {
		return nil
	}

	data, _, err := c.cache.CacheData()
	if err != nil {
		return errors.Wrap(err, "get pipeline cache data")
	}

	err = os.WriteFile(c.path, data, 0644)
	if err != nil {
		return errors.Wrapf(err, "write pipeline cache %s", c.path)
	}

	log.Printf("Saved pipeline cache: %s (%d bytes)", c.path, len(data))
	return nil
}

func (c *PipelineCache) Destroy() {
	if c == nil || c.cache == nil {
		return
	}
	c.cache.Destroy(nil)
	c.cache = nil
}
