package config

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/gogpu/gpubridge/layout"
)

// Vulkan device features, named after their VkPhysicalDevice*Features
// members.
const (
	FeatureScalarBlockLayout         = "scalarBlockLayout"
	FeatureBufferDeviceAddress       = "bufferDeviceAddress"
	FeatureShaderInt64               = "shaderInt64"
	FeatureShaderFloat64             = "shaderFloat64"
	FeatureRuntimeDescriptorArray    = "runtimeDescriptorArray"
	FeaturePartiallyBound            = "descriptorBindingPartiallyBound"
	FeatureVariableDescriptorCount   = "descriptorBindingVariableDescriptorCount"
	FeatureVulkanMemoryModel         = "vulkanMemoryModel"
	FeatureStorageBuffer8BitAccess   = "uniformAndStorageBuffer8BitAccess"
	FeatureStorageBuffer16BitAccess  = "storageBuffer16BitAccess"
	FeatureSamplerAnisotropy         = "samplerAnisotropy"
	FeatureShaderDrawParameters      = "shaderDrawParameters"
	FeatureDescriptorIndexingUniform = "shaderSampledImageArrayNonUniformIndexing"
)

// RequiredFeatures returns the device features a renderer needs for the
// configured convention and bindless scene access, sorted.
func (c *Config) RequiredFeatures() ([]string, error) {
	conv, err := c.Convention()
	if err != nil {
		return nil, err
	}
	fs := []string{
		FeatureBufferDeviceAddress,
		FeatureRuntimeDescriptorArray,
		FeaturePartiallyBound,
		FeatureVariableDescriptorCount,
		FeatureDescriptorIndexingUniform,
		FeatureVulkanMemoryModel,
		FeatureShaderDrawParameters,
		FeatureSamplerAnisotropy,
	}
	if conv.Rules == layout.Scalar {
		fs = append(fs, FeatureScalarBlockLayout)
	}
	if conv.Int64 {
		fs = append(fs, FeatureShaderInt64)
	}
	if conv.Float64 {
		fs = append(fs, FeatureShaderFloat64)
	}
	slices.Sort(fs)
	return fs, nil
}

// MissingFeatures returns the required features absent from supported.
func (c *Config) MissingFeatures(supported []string) ([]string, error) {
	req, err := c.RequiredFeatures()
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, f := range req {
		if !slices.Contains(supported, f) {
			missing = append(missing, f)
		}
	}
	return missing, nil
}

// WriteLayerSettings writes a vk_layer_settings.txt for the Khronos
// validation layer. GPU-assisted validation is the device-side bounds
// check for bindless indexing that shaders do not perform themselves.
func (c *Config) WriteLayerSettings(w io.Writer) error {
	v := c.Validation
	var b strings.Builder
	b.WriteString("# Generated by gpubridge.\n")
	if !v.Enabled {
		b.WriteString("# Validation disabled.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	const p = "khronos_validation."
	fmt.Fprintf(&b, "%sreport_flags = error,warn\n", p)
	fmt.Fprintf(&b, "%sdebug_action = VK_DBG_LAYER_ACTION_LOG_MSG\n", p)
	var enables []string
	if v.GPUAssisted {
		enables = append(enables, "VK_VALIDATION_FEATURE_ENABLE_GPU_ASSISTED_EXT")
		fmt.Fprintf(&b, "%sgpuav_enable = true\n", p)
		fmt.Fprintf(&b, "%sgpuav_descriptor_checks = true\n", p)
		fmt.Fprintf(&b, "%sgpuav_buffer_address_oob = true\n", p)
		fmt.Fprintf(&b, "%sgpuav_indirect_draws_buffers = true\n", p)
		fmt.Fprintf(&b, "%sgpuav_indirect_dispatches_buffers = true\n", p)
	}
	if v.Sync {
		enables = append(enables, "VK_VALIDATION_FEATURE_ENABLE_SYNCHRONIZATION_VALIDATION_EXT")
		fmt.Fprintf(&b, "%svalidate_sync = true\n", p)
	}
	if len(enables) > 0 {
		fmt.Fprintf(&b, "%senables = %s\n", p, strings.Join(enables, ","))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
