package utils

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
	"golang.org/x/sync/errgroup"
)

const spirvMagic uint32 = 0x07230203

// ShaderFile names a compiled SPIR-V binary and the stage it feeds.
type ShaderFile struct {
	Name  string
	Stage core1_0.ShaderStageFlags
}

func (f ShaderFile) Path(dir string) string {
	return filepath.Join(dir, f.Name+".spv")
}

func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode
}

// decodeSpirv converts a SPIR-V file's contents into words, rejecting anything that
// cannot be a SPIR-V module.
func decodeSpirv(name string, b []byte) ([]uint32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, errors.Newf("%s: SPIR-V code size %d is not a positive multiple of 4", name, len(b))
	}

	code := bytesToBytecode(b)
	if code[0] != spirvMagic {
		return nil, errors.Newf("%s: bad SPIR-V magic number 0x%08x", name, code[0])
	}

	return code, nil
}

// LoadShaderCode reads and decodes every file concurrently. The result is in the same
// order as files.
func LoadShaderCode(ctx context.Context, dir string, files []ShaderFile) ([][]uint32, error) {
	code := make([][]uint32, len(files))

	group, _ := errgroup.WithContext(ctx)
	for i := range files {
		idx := i
		group.Go(func() error {
			path := files[idx].Path(dir)
			b, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "read shader %s", path)
			}

			code[idx], err = decodeSpirv(path, b)
			return err
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return code, nil
}

func createShaderModules(device core1_0.Device, code [][]uint32) ([]core1_0.ShaderModule, error) {
	var modules []core1_0.ShaderModule
	for _, words := range code {
		module, _, err := device.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
			Code: words,
		})
		if err != nil {
			destroyShaderModules(modules)
			return nil, errors.Wrap(err, "create shader module")
		}
		modules = append(modules, module)
	}

	return modules, nil
}

func destroyShaderModules(modules []core1_0.ShaderModule) {
	for _, module := range modules {
		module.Destroy(nil)
	}
}
