package utils

import (
	"context"
	"log"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_swapchain"
)

// HelloTriangle draws a single triangle into every swapchain image. The vertex shader
// either generates the positions itself or, when a vertex buffer is set, reads them in the
// Vertex layout.
type HelloTriangle struct {
	*VulkanBase

	Shaders []ShaderFile

	vertexBuffer  *VertexBuffer
	pipelineCache *PipelineCache
	stats         *FrameStats

	renderPass     core1_0.RenderPass
	framebuffers   []core1_0.Framebuffer
	pipelineLayout core1_0.PipelineLayout
	pipeline       core1_0.Pipeline

	commandPool    core1_0.CommandPool
	commandBuffers []core1_0.CommandBuffer

	imageAvailableSemaphore    core1_0.Semaphore
	renderingFinishedSemaphore core1_0.Semaphore

	// rebuild runs when the swapchain no longer matches the surface
	rebuild func() error
}

func NewHelloTriangle(shaders []ShaderFile) *HelloTriangle {
	t := &HelloTriangle{
		VulkanBase: &VulkanBase{},
		Shaders:    shaders,
	}
	t.rebuild = t.OnWindowSizeChanged
	return t
}

// PrepareVulkan sets up the base objects and the optional pipeline cache.
func (t *HelloTriangle) PrepareVulkan(window *Window, options Options) error {
	err := t.VulkanBase.PrepareVulkan(window, options)
	if err != nil {
		return err
	}

	t.stats = NewFrameStats(options.StatsInterval)
	t.pipelineCache, err = LoadPipelineCache(t.device, t.physicalDevice, options.PipelineCache)
	return err
}

// SetVertices uploads the vertices the pipeline will draw. It must be called before
// CreatePipeline.
func (t *HelloTriangle) SetVertices(vertices []Vertex) error {
	if t.vertexBuffer != nil {
		t.vertexBuffer.Destroy()
		t.vertexBuffer = nil
	}

	vertexBuffer, err := CreateVertexBuffer(t.device, t.physicalDevice, vertices)
	if err != nil {
		return err
	}

	t.vertexBuffer = vertexBuffer
	return nil
}

func (t *HelloTriangle) vertexCount() int {
	if t.vertexBuffer != nil {
		return t.vertexBuffer.VertexCount
	}
	return 3
}

func (t *HelloTriangle) CreateRenderPass() error {
	renderPass, _, err := t.device.CreateRenderPass(nil, core1_0.RenderPassCreateInfo{
		Attachments: []core1_0.AttachmentDescription{
			{
				Format:         t.swapchain.Format,
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpStore,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    khr_swapchain.ImageLayoutPresentSrc,
			},
		},
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				ColorAttachments: []core1_0.AttachmentReference{
					{
						Attachment: 0,
						Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
					},
				},
			},
		},
		SubpassDependencies: []core1_0.SubpassDependency{
			{
				SrcSubpass: core1_0.SubpassExternal,
				DstSubpass: 0,

				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				SrcAccessMask: 0,

				DstStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				DstAccessMask: core1_0.AccessColorAttachmentWrite,
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "could not create render pass")
	}

	t.renderPass = renderPass
	return nil
}

func (t *HelloTriangle) CreateFramebuffers() error {
	for _, imageView := range t.swapchain.Views {
		framebuffer, _, err := t.device.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
			RenderPass: t.renderPass,
			Layers:     1,
			Attachments: []core1_0.ImageView{
				imageView,
			},
			Width:  t.swapchain.Extent.Width,
			Height: t.swapchain.Extent.Height,
		})
		if err != nil {
			return errors.Wrap(err, "could not create a framebuffer")
		}

		t.framebuffers = append(t.framebuffers, framebuffer)
	}

	return nil
}

func (t *HelloTriangle) CreatePipeline() error {
	code, err := LoadShaderCode(context.Background(), t.options.ShaderDir, t.Shaders)
	if err != nil {
		return err
	}

	modules, err := createShaderModules(t.device, code)
	if err != nil {
		return err
	}
	defer destroyShaderModules(modules)

	var stages []core1_0.PipelineShaderStageCreateInfo
	for i, module := range modules {
		stages = append(stages, core1_0.PipelineShaderStageCreateInfo{
			Stage:  t.Shaders[i].Stage,
			Module: module,
			Name:   "main",
		})
	}

	vertexInput := &core1_0.PipelineVertexInputStateCreateInfo{}
	if t.vertexBuffer != nil {
		vertexInput.VertexBindingDescriptions = getVertexBindingDescription()
		vertexInput.VertexAttributeDescriptions = getVertexAttributeDescriptions()
	}

	inputAssembly := &core1_0.PipelineInputAssemblyStateCreateInfo{
		Topology:               core1_0.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: false,
	}

	viewport := &core1_0.PipelineViewportStateCreateInfo{
		Viewports: []core1_0.Viewport{
			{
				X:        0,
				Y:        0,
				Width:    float32(t.swapchain.Extent.Width),
				Height:   float32(t.swapchain.Extent.Height),
				MinDepth: 0,
				MaxDepth: 1,
			},
		},
		Scissors: []core1_0.Rect2D{
			{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: t.swapchain.Extent,
			},
		},
	}

	rasterization := &core1_0.PipelineRasterizationStateCreateInfo{
		DepthClampEnable:        false,
		RasterizerDiscardEnable: false,

		PolygonMode: core1_0.PolygonModeFill,
		CullMode:    core1_0.CullModeBack,
		FrontFace:   core1_0.FrontFaceCounterClockwise,

		DepthBiasEnable: false,

		LineWidth: 1.0,
	}

	multisample := &core1_0.PipelineMultisampleStateCreateInfo{
		SampleShadingEnable:  false,
		RasterizationSamples: core1_0.Samples1,
		MinSampleShading:     1.0,
	}

	colorBlend := &core1_0.PipelineColorBlendStateCreateInfo{
		LogicOpEnabled: false,
		LogicOp:        core1_0.LogicOpCopy,

		BlendConstants: [4]float32{0, 0, 0, 0},
		Attachments: []core1_0.PipelineColorBlendAttachmentState{
			{
				BlendEnabled:   false,
				ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
			},
		},
	}

	t.pipelineLayout, _, err = t.device.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{})
	if err != nil {
		return errors.Wrap(err, "could not create pipeline layout")
	}

	start := hrtime.Now()
	pipelines, _, err := t.device.CreateGraphicsPipelines(t.pipelineCache.Handle(), nil, []core1_0.GraphicsPipelineCreateInfo{
		{
			Stages:             stages,
			VertexInputState:   vertexInput,
			InputAssemblyState: inputAssembly,
			ViewportState:      viewport,
			RasterizationState: rasterization,
			MultisampleState:   multisample,
			ColorBlendState:    colorBlend,
			Layout:             t.pipelineLayout,
			RenderPass:         t.renderPass,
			Subpass:            0,
			BasePipelineIndex:  -1,
		},
	})
	if err != nil {
		return errors.Wrap(err, "could not create graphics pipeline")
	}
	log.Printf("vkCreateGraphicsPipelines: %s", hrtime.Now()-start)

	t.pipeline = pipelines[0]
	return nil
}

func (t *HelloTriangle) CreateSemaphores() error {
	var err error
	t.imageAvailableSemaphore, _, err = t.device.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		return errors.Wrap(err, "could not create image available semaphore")
	}

	t.renderingFinishedSemaphore, _, err = t.device.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		return errors.Wrap(err, "could not create rendering finished semaphore")
	}

	return nil
}

func (t *HelloTriangle) CreateCommandBuffers() error {
	pool, _, err := t.device.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		QueueFamilyIndex: t.graphicsQueue.FamilyIndex,
	})
	if err != nil {
		return errors.Wrap(err, "could not create command pool")
	}
	t.commandPool = pool

	t.commandBuffers, _, err = t.device.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        t.commandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: len(t.swapchain.Images),
	})
	if err != nil {
		return errors.Wrap(err, "could not allocate command buffers")
	}

	return nil
}

func (t *HelloTriangle) RecordCommandBuffers() error {
	for bufferIdx, buffer := range t.commandBuffers {
		_, err := buffer.Begin(core1_0.CommandBufferBeginInfo{
			Flags: core1_0.CommandBufferUsageSimultaneousUse,
		})
		if err != nil {
			return errors.Wrapf(err, "could not begin command buffer %d", bufferIdx)
		}

		err = buffer.CmdBeginRenderPass(core1_0.SubpassContentsInline,
			core1_0.RenderPassBeginInfo{
				RenderPass:  t.renderPass,
				Framebuffer: t.framebuffers[bufferIdx],
				RenderArea: core1_0.Rect2D{
					Offset: core1_0.Offset2D{X: 0, Y: 0},
					Extent: t.swapchain.Extent,
				},
				ClearValues: []core1_0.ClearValue{
					ClearColor,
				},
			})
		if err != nil {
			return errors.Wrapf(err, "could not begin render pass in command buffer %d", bufferIdx)
		}

		buffer.CmdBindPipeline(core1_0.PipelineBindPointGraphics, t.pipeline)
		if t.vertexBuffer != nil {
			buffer.CmdBindVertexBuffers([]core1_0.Buffer{t.vertexBuffer.Buffer}, []int{0})
		}
		buffer.CmdDraw(t.vertexCount(), 1, 0, 0)
		buffer.CmdEndRenderPass()

		_, err = buffer.End()
		if err != nil {
			return errors.Wrapf(err, "could not record command buffer %d", bufferIdx)
		}
	}

	return nil
}

// Draw presents one frame using the pre-recorded command buffer of the acquired image. It
// reports false when the swapchain had to be rebuilt before anything was presented.
func (t *HelloTriangle) Draw() (bool, error) {
	imageIndex, res, err := t.swapchain.Handle.AcquireNextImage(common.NoTimeout, t.imageAvailableSemaphore, nil)
	if res == khr_swapchain.VKErrorOutOfDate {
		return false, t.rebuild()
	} else if err != nil {
		return false, errors.Wrap(err, "problem occurred during swapchain image acquisition")
	}

	_, err = t.graphicsQueue.Handle.Submit(nil, []core1_0.SubmitInfo{
		{
			WaitSemaphores:   []core1_0.Semaphore{t.imageAvailableSemaphore},
			WaitDstStageMask: []core1_0.PipelineStageFlags{core1_0.PipelineStageColorAttachmentOutput},
			CommandBuffers:   []core1_0.CommandBuffer{t.commandBuffers[imageIndex]},
			SignalSemaphores: []core1_0.Semaphore{t.renderingFinishedSemaphore},
		},
	})
	if err != nil {
		return false, errors.Wrap(err, "could not submit command buffer")
	}

	res, err = t.swapchainExtension.QueuePresent(t.presentQueue.Handle, khr_swapchain.PresentInfo{
		WaitSemaphores: []core1_0.Semaphore{t.renderingFinishedSemaphore},
		Swapchains:     []khr_swapchain.Swapchain{t.swapchain.Handle},
		ImageIndices:   []int{imageIndex},
	})
	if res == khr_swapchain.VKErrorOutOfDate || res == khr_swapchain.VKSuboptimal {
		// The image was still presented
		return true, t.rebuild()
	} else if err != nil {
		return false, errors.Wrap(err, "problem occurred during image presentation")
	}

	// One semaphore pair is shared by every frame
	_, err = t.presentQueue.Handle.WaitIdle()
	if err != nil {
		return false, errors.Wrap(err, "wait for present queue")
	}

	if t.stats != nil {
		t.stats.LogFrame()
	}

	return true, nil
}

// OnWindowSizeChanged rebuilds the swapchain and everything recorded against it.
func (t *HelloTriangle) OnWindowSizeChanged() error {
	if !t.CanRender() {
		return nil
	}

	_, err := t.device.WaitIdle()
	if err != nil {
		return errors.Wrap(err, "wait for device idle")
	}

	t.clearSwapchainResources()

	recreated, err := t.RecreateSwapchain()
	if err != nil {
		return err
	}
	if !recreated {
		return errors.New("window lost its drawable area while resizing")
	}

	return t.CreateSwapchainResources()
}

// CreateSwapchainResources runs every step that depends on the current swapchain.
func (t *HelloTriangle) CreateSwapchainResources() error {
	steps := []struct {
		name string
		run  func() error
	}{
		{"CreateRenderPass", t.CreateRenderPass},
		{"CreateFramebuffers", t.CreateFramebuffers},
		{"CreatePipeline", t.CreatePipeline},
		{"CreateCommandBuffers", t.CreateCommandBuffers},
		{"RecordCommandBuffers", t.RecordCommandBuffers},
	}
	for _, step := range steps {
		log.Println(step.name)
		if err := step.run(); err != nil {
			return err
		}
	}

	return nil
}

func (t *HelloTriangle) clearSwapchainResources() {
	if len(t.commandBuffers) > 0 {
		t.device.FreeCommandBuffers(t.commandBuffers)
		t.commandBuffers = nil
	}

	if t.commandPool != nil {
		t.commandPool.Destroy(nil)
		t.commandPool = nil
	}

	if t.pipeline != nil {
		t.pipeline.Destroy(nil)
		t.pipeline = nil
	}

	if t.pipelineLayout != nil {
		t.pipelineLayout.Destroy(nil)
		t.pipelineLayout = nil
	}

	for _, framebuffer := range t.framebuffers {
		framebuffer.Destroy(nil)
	}
	t.framebuffers = nil

	if t.renderPass != nil {
		t.renderPass.Destroy(nil)
		t.renderPass = nil
	}
}

// Destroy releases every object the sample and its base created.
func (t *HelloTriangle) Destroy() {
	if t.device != nil {
		t.device.WaitIdle()

		t.clearSwapchainResources()

		if t.vertexBuffer != nil {
			t.vertexBuffer.Destroy()
			t.vertexBuffer = nil
		}

		if t.imageAvailableSemaphore != nil {
			t.imageAvailableSemaphore.Destroy(nil)
			t.imageAvailableSemaphore = nil
		}

		if t.renderingFinishedSemaphore != nil {
			t.renderingFinishedSemaphore.Destroy(nil)
			t.renderingFinishedSemaphore = nil
		}

		if err := t.pipelineCache.Save(); err != nil {
			log.Printf("%+v", err)
		}
		t.pipelineCache.Destroy()
		t.pipelineCache = nil
	}

	t.VulkanBase.Destroy()
}
