package renderer

// =============================================================
//
//	Shaders
//
// =============================================================

// Program names. Devices that do not compile GLSL dispatch on these.
const (
	ProgramAmbient  = "ambient"
	ProgramSpot     = "spot"
	ProgramMirror   = "mirror"
	ProgramMaterial = "material"
)

// Texture units used by the light pass.
const (
	UnitPosition = 0
	UnitNormal   = 1
	UnitColor    = 2
	UnitShadow   = 3
)

// Full-screen triangle strip generated from gl_VertexID; the device draws four
// vertices with an empty vertex array bound.
var fullScreenVertexSource = `#version 330 core

out vec2 uv;

void main() {
    vec2 corner = vec2(float(gl_VertexID & 1), float(gl_VertexID >> 1));
    uv = corner;
    gl_Position = vec4(corner * 2.0 - 1.0, 0.0, 1.0);
}
` + "\x00"

var ambientFragmentSource = `#version 330 core

in vec2 uv;

uniform sampler2D colorMap;
uniform vec3 lightColor;
uniform float lightIntensity;

out vec4 fragColor;

void main() {
    vec4 diffuse = texture(colorMap, uv);
    fragColor = vec4(lightIntensity * lightColor * diffuse.rgb, diffuse.a);
}
` + "\x00"

var spotFragmentSource = `#version 330 core

in vec2 uv;

uniform sampler2D positionMap;
uniform sampler2D normalMap;
uniform sampler2D colorMap;
uniform sampler2D shadowMap;

uniform mat4 inverseViewProjection;

uniform vec3 lightColor;
uniform float lightIntensity;
uniform vec3 lightPosition;
uniform vec3 lightDirection;
uniform float cutoff;
uniform float attenuationConstant;
uniform float attenuationLinear;
uniform float attenuationExp;

uniform int shadowsEnabled;
uniform mat4 shadowViewProjection;
uniform float shadowBias;

out vec4 fragColor;

float shadowVisibility(vec3 p) {
    vec4 clip = shadowViewProjection * vec4(p, 1.0);
    vec3 coord = (clip.xyz / clip.w) * 0.5 + 0.5;
    if (coord.x < 0.0 || coord.x > 1.0 || coord.y < 0.0 || coord.y > 1.0 || coord.z > 1.0) {
        return 1.0;
    }
    float stored = texture(shadowMap, coord.xy).r;
    return stored < coord.z - shadowBias ? 0.0 : 1.0;
}

void main() {
    vec4 color = texture(colorMap, uv);
    if (color.a == 0.0) {
        discard;
    }
    vec4 position = texture(positionMap, uv);
    vec4 normal = texture(normalMap, uv);
    vec3 p = position.xyz;
    vec3 n = normalize(normal.xyz);

    vec3 toLight = lightPosition - p;
    float dist = length(toLight);
    vec3 l = toLight / dist;
    float cosTheta = dot(-l, normalize(lightDirection));
    if (cosTheta <= cutoff) {
        discard;
    }
    float spot = 1.0 - (1.0 - cosTheta) / (1.0 - cutoff);

    vec2 ndc = uv * 2.0 - 1.0;
    vec4 nearPoint = inverseViewProjection * vec4(ndc, -1.0, 1.0);
    vec4 farPoint = inverseViewProjection * vec4(ndc, 1.0, 1.0);
    vec3 toEye = normalize(nearPoint.xyz / nearPoint.w - farPoint.xyz / farPoint.w);

    float diffuse = max(dot(n, l), 0.0);
    float specular = 0.0;
    if (diffuse > 0.0) {
        specular = normal.w * pow(max(dot(toEye, reflect(-l, n)), 0.0), position.w);
    }

    float visibility = 1.0;
    if (shadowsEnabled == 1) {
        visibility = shadowVisibility(p);
    }

    float attenuation = attenuationConstant + attenuationLinear * dist + attenuationExp * dist * dist;
    vec3 result = lightColor * lightIntensity * (diffuse * color.rgb + vec3(specular)) * spot * visibility / attenuation;
    fragColor = vec4(result, 0.0);
}
` + "\x00"

var mirrorFragmentSource = `#version 330 core

in vec2 uv;

uniform sampler2D colorMap;
uniform float reflectivity;

out vec4 fragColor;

void main() {
    vec4 reflected = texture(colorMap, vec2(1.0 - uv.x, uv.y));
    fragColor = vec4(reflected.rgb, reflected.a * reflectivity);
}
` + "\x00"

var materialVertexSource = `#version 330 core

layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;

uniform mat4 model;
uniform mat4 viewProjection;

out vec3 worldPosition;
out vec3 worldNormal;

void main() {
    vec4 world = model * vec4(inPosition, 1.0);
    worldPosition = world.xyz;
    worldNormal = mat3(model) * inNormal; // no non-uniform scaling on scene objects
    gl_Position = viewProjection * world;
}
` + "\x00"

var materialFragmentSource = `#version 330 core

in vec3 worldPosition;
in vec3 worldNormal;

uniform vec3 diffuseColor;
uniform float diffuseIntensity;
uniform float specularIntensity;
uniform float specularPower;

layout(location = 0) out vec4 outPosition;
layout(location = 1) out vec4 outNormal;
layout(location = 2) out vec4 outColor;

void main() {
    outPosition = vec4(worldPosition, specularPower);
    outNormal = vec4(normalize(worldNormal), specularIntensity);
    outColor = vec4(diffuseIntensity * diffuseColor, 1.0);
}
` + "\x00"

func AmbientProgramSource() ProgramSource {
	return ProgramSource{Name: ProgramAmbient, Vertex: fullScreenVertexSource, Fragment: ambientFragmentSource}
}

func SpotProgramSource() ProgramSource {
	return ProgramSource{Name: ProgramSpot, Vertex: fullScreenVertexSource, Fragment: spotFragmentSource}
}

func MirrorProgramSource() ProgramSource {
	return ProgramSource{Name: ProgramMirror, Vertex: fullScreenVertexSource, Fragment: mirrorFragmentSource}
}

// MaterialProgramSource writes the G-buffer layout from lit geometry. Scene
// objects use it for both the geometry and the shadow pass; in the latter the
// color outputs are masked off.
func MaterialProgramSource() ProgramSource {
	return ProgramSource{Name: ProgramMaterial, Vertex: materialVertexSource, Fragment: materialFragmentSource}
}
