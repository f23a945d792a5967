package graphics

// Terrain shader sources, compiled at startup. Lighting is a single
// directional lambert term; color blends by height between uniform-set
// low/high tints, with a linear fog toward the clear color.

const terrainVertShader = `#version 410 core
layout(location = 0) in vec3 position;
layout(location = 1) in vec3 normal;
layout(location = 2) in vec2 uv;

uniform mat4 proj;
uniform mat4 view;
uniform mat4 model;

out vec3 fragNormal;
out vec3 fragWorldPos;
out vec2 fragUV;

void main() {
	vec4 worldPos = model * vec4(position, 1.0);
	fragWorldPos = worldPos.xyz;
	fragNormal = normal;
	fragUV = uv;
	gl_Position = proj * view * worldPos;
}`

const terrainFragShader = `#version 410 core
in vec3 fragNormal;
in vec3 fragWorldPos;
in vec2 fragUV;

uniform vec3 lightDir;
uniform vec3 lowColor;
uniform vec3 highColor;
uniform vec3 fogColor;
uniform float fogStart;
uniform float fogEnd;
uniform float heightSpan;
uniform vec3 cameraPos;

out vec4 fragColor;

void main() {
	float h = clamp(fragWorldPos.y / heightSpan * 0.5 + 0.5, 0.0, 1.0);
	vec3 base = mix(lowColor, highColor, h);
	float diffuse = max(dot(normalize(fragNormal), normalize(-lightDir)), 0.0);
	vec3 lit = base * (0.35 + 0.65 * diffuse);
	float dist = length(fragWorldPos - cameraPos);
	float fog = clamp((dist - fogStart) / (fogEnd - fogStart), 0.0, 1.0);
	fragColor = vec4(mix(lit, fogColor, fog), 1.0);
}`
