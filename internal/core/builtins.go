package core

import "cxxforge/internal/types"

// builtinPackages is the curated catalog seeded into every registry.
// Override files may replace any entry by re-declaring its name.
func builtinPackages() []types.PackageEntry {
	return []types.PackageEntry{
		{
			Name:          "fmt",
			GitRepository: "https://github.com/fmtlib/fmt.git",
			GitTag:        "11.1.4",
			Strategy:      types.FetchStrategyCompiled,
			LinkTargets:   []string{"fmt::fmt"},
			Sources:       []string{"src/format.cc", "src/os.cc"},
			IncludeDirs:   []string{"include"},
		},
		{
			Name:          "spdlog",
			GitRepository: "https://github.com/gabime/spdlog.git",
			GitTag:        "v1.15.2",
			Strategy:      types.FetchStrategyDirect,
			LinkTargets:   []string{"spdlog::spdlog"},
			Dependencies:  []string{"fmt"},
			CMakeOptions:  []string{"SPDLOG_FMT_EXTERNAL=ON"},
		},
		{
			Name:          "imgui",
			GitRepository: "https://github.com/ocornut/imgui.git",
			GitTag:        "v1.91.9",
			Strategy:      types.FetchStrategyCompiled,
			LinkTargets:   []string{"imgui::imgui"},
			Sources: []string{
				"imgui.cpp",
				"imgui_demo.cpp",
				"imgui_draw.cpp",
				"imgui_tables.cpp",
				"imgui_widgets.cpp",
			},
			IncludeDirs: []string{".", "backends"},
			Variants: map[string]types.PackageVariant{
				"sdl3_renderer": {
					Sources: []string{
						"backends/imgui_impl_sdl3.cpp",
						"backends/imgui_impl_sdlrenderer3.cpp",
					},
					Dependencies: []string{"sdl3"},
				},
				"sdl3_opengl3": {
					Sources: []string{
						"backends/imgui_impl_sdl3.cpp",
						"backends/imgui_impl_opengl3.cpp",
					},
					Dependencies: []string{"sdl3"},
				},
			},
		},
		{
			Name:          "sdl3",
			GitRepository: "https://github.com/libsdl-org/SDL.git",
			GitTag:        "release-3.2.10",
			Strategy:      types.FetchStrategyDirect,
			LinkTargets:   []string{"SDL3::SDL3"},
			CMakeOptions:  []string{"SDL_TEST_LIBRARY=OFF"},
		},
		{
			Name:          "raylib",
			GitRepository: "https://github.com/raysan5/raylib.git",
			GitTag:        "5.5",
			Strategy:      types.FetchStrategyDirect,
			LinkTargets:   []string{"raylib"},
			CMakeOptions:  []string{"BUILD_EXAMPLES=OFF"},
		},
		{
			Name:          "glm",
			GitRepository: "https://github.com/g-truc/glm.git",
			GitTag:        "1.0.1",
			Strategy:      types.FetchStrategyHeaderOnly,
			LinkTargets:   []string{"glm::glm"},
			IncludeDirs:   []string{"."},
			Definitions:   []string{"GLM_ENABLE_EXPERIMENTAL"},
		},
		{
			Name:          "nlohmann_json",
			GitRepository: "https://github.com/nlohmann/json.git",
			GitTag:        "v3.12.0",
			Strategy:      types.FetchStrategyHeaderOnly,
			LinkTargets:   []string{"nlohmann_json::nlohmann_json"},
			IncludeDirs:   []string{"single_include"},
		},
		{
			Name:          "stb",
			GitRepository: "https://github.com/nothings/stb.git",
			Strategy:      types.FetchStrategyHeaderOnly,
			LinkTargets:   []string{"stb::stb"},
			IncludeDirs:   []string{"."},
		},
		{
			Name:          "entt",
			GitRepository: "https://github.com/skypjack/entt.git",
			GitTag:        "v3.15.0",
			Strategy:      types.FetchStrategyHeaderOnly,
			LinkTargets:   []string{"EnTT::EnTT"},
			IncludeDirs:   []string{"single_include"},
		},
		{
			Name:          "catch2",
			GitRepository: "https://github.com/catchorg/Catch2.git",
			GitTag:        "v3.8.1",
			Strategy:      types.FetchStrategyDirect,
			LinkTargets:   []string{"Catch2::Catch2WithMain"},
		},
	}
}

func builtinAliases() map[string]string {
	return map[string]string{
		"json":    "nlohmann_json",
		"sdl":     "sdl3",
		"gl-math": "glm",
	}
}
