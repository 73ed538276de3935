package glview

// Uniform names the draw loop sets besides the light slots.
const (
	uniformModel      = "model\x00"
	uniformView       = "view\x00"
	uniformProjection = "projection\x00"
	uniformEye        = "eyePosition\x00"
	uniformColour     = "objectColour\x00"
	uniformUnlit      = "unlit\x00"
	uniformSpecular   = "material.specularIntensity\x00"
	uniformShininess  = "material.shininess\x00"
)

const vertexShader = `#version 410 core
layout (location = 0) in vec3 pos;
layout (location = 1) in vec2 tex;
layout (location = 2) in vec3 norm;

out vec3 Normal;
out vec3 FragPos;

uniform mat4 model;
uniform mat4 view;
uniform mat4 projection;

void main() {
	gl_Position = projection * view * model * vec4(pos, 1.0);
	Normal = mat3(transpose(inverse(model))) * norm;
	FragPos = (model * vec4(pos, 1.0)).xyz;
}
` + "\x00"

const fragmentShader = `#version 410 core
in vec3 Normal;
in vec3 FragPos;

out vec4 colour;

const int MAX_POINT_LIGHTS = 3;
const int MAX_SPOT_LIGHTS = 3;

struct Light {
	vec3 colour;
	float ambientIntensity;
	float diffuseIntensity;
};

struct DirectionalLight {
	Light base;
	vec3 direction;
};

struct PointLight {
	Light base;
	vec3 position;
	float constant;
	float linear;
	float quadratic;
};

struct SpotLight {
	PointLight base;
	vec3 direction;
	float edge; // Cosine of the cone half-angle.
};

struct Material {
	float specularIntensity;
	float shininess;
};

uniform int pointLightCount;
uniform int spotLightCount;

uniform DirectionalLight directionalLight;
uniform PointLight pointLights[MAX_POINT_LIGHTS];
uniform SpotLight spotLights[MAX_SPOT_LIGHTS];

uniform Material material;
uniform vec3 eyePosition;
uniform vec3 objectColour;
uniform bool unlit;

// toLight points from the fragment towards the light.
vec4 calcLightByDirection(Light light, vec3 toLight) {
	vec3 n = normalize(Normal);
	vec4 ambient = vec4(light.colour * light.ambientIntensity, 1.0);
	float diffuseFactor = max(dot(n, toLight), 0.0);
	vec4 diffuse = vec4(light.colour * light.diffuseIntensity * diffuseFactor, 1.0);
	vec4 specular = vec4(0.0);
	if (diffuseFactor > 0.0) {
		vec3 fragToEye = normalize(eyePosition - FragPos);
		vec3 reflected = normalize(reflect(-toLight, n));
		float specularFactor = dot(fragToEye, reflected);
		if (specularFactor > 0.0) {
			specularFactor = pow(specularFactor, material.shininess);
			specular = vec4(light.colour * material.specularIntensity * specularFactor, 1.0);
		}
	}
	return ambient + diffuse + specular;
}

vec4 calcPointLight(PointLight p) {
	vec3 toLight = p.position - FragPos;
	float dist = length(toLight);
	vec4 c = calcLightByDirection(p.base, normalize(toLight));
	float attenuation = p.quadratic*dist*dist + p.linear*dist + p.constant;
	return c / attenuation;
}

vec4 calcSpotLight(SpotLight s) {
	vec3 ray = normalize(FragPos - s.base.position);
	float factor = dot(ray, s.direction);
	if (factor <= s.edge) {
		return vec4(0.0);
	}
	vec4 c = calcPointLight(s.base);
	return c * (1.0 - (1.0 - factor) / (1.0 - s.edge));
}

void main() {
	if (unlit) {
		colour = vec4(objectColour, 1.0);
		return;
	}
	vec4 total = calcLightByDirection(directionalLight.base, -normalize(directionalLight.direction));
	for (int i = 0; i < pointLightCount; i++) {
		total += calcPointLight(pointLights[i]);
	}
	for (int i = 0; i < spotLightCount; i++) {
		total += calcSpotLight(spotLights[i]);
	}
	colour = vec4(objectColour, 1.0) * vec4(total.rgb, 1.0);
}
` + "\x00"
